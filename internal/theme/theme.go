// Package theme holds the application palette, an Oceanic Next base16
// scheme adapted to the terminal's color profile.
package theme

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/folio/internal/colormode"
)

// oceanicNext lists base01 through base0F. base00 is the terminal default
// background so the palette sits on whatever the user runs.
var oceanicNext = [15]string{
	"#343d46", "#4f5b66", "#65737e", "#a7adba", "#c0c5ce", "#cdd3de", "#f0f4f8",
	"#ec5f67", "#f99157", "#fac863", "#99c794", "#5fb3b3", "#6699cc", "#c594c5", "#ab7967",
}

// Palette is a base16 color scheme.
type Palette struct {
	profile colormode.Profile

	Base00 colormode.Color // default background
	Base01 colormode.Color // lighter background, status bars
	Base02 colormode.Color // selection background
	Base03 colormode.Color // comments, muted text
	Base04 colormode.Color // dark foreground
	Base05 colormode.Color // default foreground
	Base06 colormode.Color // light foreground
	Base07 colormode.Color // lightest foreground
	Base08 colormode.Color // red
	Base09 colormode.Color // orange
	Base0A colormode.Color // yellow
	Base0B colormode.Color // green
	Base0C colormode.Color // cyan
	Base0D colormode.Color // blue
	Base0E colormode.Color // purple
	Base0F colormode.Color // brown

	stylesOnce sync.Once
	styles     *Styles
}

// New builds the palette for profile.
func New(profile colormode.Profile) *Palette {
	var c [15]colormode.Color
	for i, hex := range oceanicNext {
		c[i] = convert(profile, hex)
	}

	return &Palette{
		profile: profile,
		Base01:  c[0], Base02: c[1], Base03: c[2], Base04: c[3],
		Base05: c[4], Base06: c[5], Base07: c[6], Base08: c[7],
		Base09: c[8], Base0A: c[9], Base0B: c[10], Base0C: c[11],
		Base0D: c[12], Base0E: c[13], Base0F: c[14],
	}
}

func convert(profile colormode.Profile, hex string) colormode.Color {
	col, err := colorful.Hex(hex)
	if err != nil {
		return colormode.Color{}
	}
	r, g, b := col.RGB255()
	return profile.Convert(r, g, b)
}

// Profile returns the color profile the palette was built for.
func (p *Palette) Profile() colormode.Profile { return p.profile }

var (
	configured atomic.Pointer[colormode.Profile]

	current = sync.OnceValue(func() *Palette {
		if p := configured.Load(); p != nil {
			return New(*p)
		}
		return New(colormode.Detect())
	})
)

// Configure sets the profile used to build the shared palette. It must be
// called before the first call to Current; later calls have no effect on
// an already built palette.
func Configure(profile colormode.Profile) {
	configured.Store(&profile)
}

// Current returns the shared palette, building it on first use.
func Current() *Palette {
	return current()
}

// Styles contains pre-built lipgloss styles for the viewer.
type Styles struct {
	Base      lipgloss.Style
	Muted     lipgloss.Style
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Accent    lipgloss.Style
}

// S returns the palette's styles.
func (p *Palette) S() *Styles {
	p.stylesOnce.Do(func() {
		base := lipgloss.NewStyle().Foreground(p.Base05.Lipgloss())
		p.styles = &Styles{
			Base:  base,
			Muted: lipgloss.NewStyle().Foreground(p.Base03.Lipgloss()),
			Title: lipgloss.NewStyle().Foreground(p.Base07.Lipgloss()).Bold(true),
			StatusBar: lipgloss.NewStyle().
				Background(p.Base01.Lipgloss()).
				Foreground(p.Base05.Lipgloss()),
			Success: lipgloss.NewStyle().Foreground(p.Base0B.Lipgloss()),
			Error:   lipgloss.NewStyle().Foreground(p.Base08.Lipgloss()),
			Warning: lipgloss.NewStyle().Foreground(p.Base0A.Lipgloss()),
			Accent:  lipgloss.NewStyle().Foreground(p.Base0D.Lipgloss()),
		}
	})
	return p.styles
}

// PanelStyle returns a rounded border style, highlighted when focused.
func (p *Palette) PanelStyle(focused bool) lipgloss.Style {
	border := p.Base02
	if focused {
		border = p.Base0D
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border.Lipgloss())
}
