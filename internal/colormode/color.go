package colormode

import (
	"image/color"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type kind uint8

const (
	kindDefault kind = iota
	kindRGB
	kindIndexed
)

// Color is a terminal cell color. The zero value is the terminal default.
type Color struct {
	kind    kind
	r, g, b uint8
	index   uint8
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{kind: kindRGB, r: r, g: g, b: b}
}

// Indexed returns a 256-color palette entry.
func Indexed(index uint8) Color {
	return Color{kind: kindIndexed, index: index}
}

// FromColor converts any image color, dropping alpha.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA) //nolint:errcheck,forcetypeassert // NRGBAModel always returns NRGBA
	return RGB(n.R, n.G, n.B)
}

// IsDefault reports whether c is the terminal default color.
func (c Color) IsDefault() bool { return c.kind == kindDefault }

// IsIndexed reports whether c is a palette index.
func (c Color) IsIndexed() bool { return c.kind == kindIndexed }

// Index returns the palette index of an indexed color.
func (c Color) Index() uint8 { return c.index }

// RGB returns the channels of a 24-bit color.
func (c Color) RGB() (r, g, b uint8) { return c.r, c.g, c.b }

// Lipgloss converts c to a lipgloss terminal color.
func (c Color) Lipgloss() lipgloss.TerminalColor {
	switch c.kind {
	case kindIndexed:
		return lipgloss.Color(strconv.Itoa(int(c.index)))
	case kindRGB:
		return lipgloss.Color(c.String())
	default:
		return lipgloss.NoColor{}
	}
}

// String returns "#rrggbb" for RGB colors, the decimal index for palette
// colors and "default" otherwise.
func (c Color) String() string {
	switch c.kind {
	case kindIndexed:
		return strconv.Itoa(int(c.index))
	case kindRGB:
		return colorful.Color{
			R: float64(c.r) / 255,
			G: float64(c.g) / 255,
			B: float64(c.b) / 255,
		}.Hex()
	default:
		return "default"
	}
}
