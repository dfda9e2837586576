// Package colormode adapts 24-bit colors to what the hosting terminal can display.
package colormode

import (
	"os"
	"strings"
)

// Profile is the color fidelity an encoder should target.
type Profile int

const (
	// ANSI256 quantizes every color to the 256-color palette.
	ANSI256 Profile = iota
	// TrueColor passes 24-bit colors through unchanged.
	TrueColor
)

func (p Profile) String() string {
	if p == TrueColor {
		return "truecolor"
	}
	return "256"
}

// SupportsTrueColor reports whether the terminal advertises 24-bit color
// through COLORTERM or TERM. The environment is read on every call.
func SupportsTrueColor() bool {
	return supportsTrueColor(os.Getenv)
}

func supportsTrueColor(getenv func(string) string) bool {
	if colorterm := strings.ToLower(getenv("COLORTERM")); colorterm == "truecolor" || colorterm == "24bit" {
		return true
	}

	term := strings.ToLower(getenv("TERM"))
	return strings.Contains(term, "truecolor") || strings.Contains(term, "24bit")
}

// Detect returns the profile for the current terminal.
//
// The FOLIO_COLOR_MODE environment variable can override detection:
//   - "truecolor" or "24bit": force 24-bit colors
//   - "256": force palette quantization
func Detect() Profile {
	if p, ok := ParseProfile(os.Getenv("FOLIO_COLOR_MODE")); ok {
		return p
	}
	if SupportsTrueColor() {
		return TrueColor
	}
	return ANSI256
}

// ParseProfile parses a configured color mode. It returns false for "auto",
// the empty string and unknown values, meaning the caller should detect.
func ParseProfile(s string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truecolor", "24bit":
		return TrueColor, true
	case "256", "ansi256":
		return ANSI256, true
	default:
		return ANSI256, false
	}
}

// Convert maps an RGB triple to a color suited to the profile.
func (p Profile) Convert(r, g, b uint8) Color {
	if p == TrueColor {
		return RGB(r, g, b)
	}
	return Indexed(Quantize(r, g, b))
}

// SmartColor converts a packed 0xRRGGBB value for the current terminal:
// unchanged when truecolor is supported, quantized otherwise.
func SmartColor(rgb uint32) Color {
	r, g, b := unpack(rgb)
	if SupportsTrueColor() {
		return RGB(r, g, b)
	}
	return Indexed(Quantize(r, g, b))
}

func unpack(rgb uint32) (r, g, b uint8) {
	return uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb) //nolint:gosec // truncation intended
}
