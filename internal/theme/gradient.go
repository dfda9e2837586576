package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/llehouerou/folio/internal/colormode"
)

// Gradient renders bold text with a horizontal blend from one color to
// another. Palette indices cannot be blended; text is then drawn in from.
func (p *Palette) Gradient(text string, from, to colormode.Color) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	if len(clusters) == 1 || from.IsIndexed() || to.IsIndexed() || from.IsDefault() || to.IsDefault() {
		return lipgloss.NewStyle().Foreground(from.Lipgloss()).Bold(true).Render(text)
	}

	colors := p.blend(len(clusters), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		b.WriteString(lipgloss.NewStyle().Foreground(colors[i].Lipgloss()).Bold(true).Render(cluster))
	}
	return b.String()
}

// blend returns size colors between from and to, interpolated in HCL space
// for perceptually even steps.
func (p *Palette) blend(size int, from, to colormode.Color) []colormode.Color {
	c1 := toColorful(from)
	c2 := toColorful(to)

	colors := make([]colormode.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		r, g, b := c1.BlendHcl(c2, t).Clamped().RGB255()
		colors[i] = p.profile.Convert(r, g, b)
	}
	return colors
}

func toColorful(c colormode.Color) colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
