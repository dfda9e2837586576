package colormode

import (
	"image/color"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestQuantize_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"pure red", 255, 0, 0, 196},
		{"pure green", 0, 255, 0, 46},
		{"pure blue", 0, 0, 255, 21},
		{"black", 0, 0, 0, 232},
		{"white", 255, 255, 255, 231},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Quantize(%d, %d, %d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestQuantize_DarkGraysUseRamp(t *testing.T) {
	for v := range 80 {
		c := uint8(v)
		got := Quantize(c, c, c)
		if got < 232 {
			t.Errorf("Quantize(%d, %d, %d) = %d, want grayscale ramp [232,255]", c, c, c, got)
		}
	}
}

func TestQuantize_DarkBlueGray(t *testing.T) {
	// Oceanic Next background
	got := Quantize(27, 43, 52)
	if got < 232 || got > 235 {
		t.Errorf("Quantize(27, 43, 52) = %d, want very dark grayscale [232,235]", got)
	}
}

func TestQuantize_MidGrayPrefersRamp(t *testing.T) {
	got := Quantize(128, 128, 128)
	if got < 232 {
		t.Errorf("Quantize(128, 128, 128) = %d, want grayscale ramp", got)
	}
}

func TestQuantize_AlwaysInRange(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				got := Quantize(uint8(r), uint8(g), uint8(b))
				if got < 16 {
					t.Fatalf("Quantize(%d, %d, %d) = %d, want >= 16", r, g, b, got)
				}
			}
		}
	}
}

func TestQuantize_SaturatedColorUsesCube(t *testing.T) {
	// Orange is far from gray; it must land in the cube.
	got := Quantize(0xF9, 0x91, 0x57)
	if got < 16 || got > 231 {
		t.Errorf("Quantize(orange) = %d, want cube [16,231]", got)
	}
}

func TestSupportsTrueColor(t *testing.T) {
	tests := []struct {
		name      string
		colorterm string
		term      string
		want      bool
	}{
		{"both unset", "", "", false},
		{"colorterm truecolor", "truecolor", "", true},
		{"colorterm 24bit", "24bit", "", true},
		{"colorterm mixed case", "TrueColor", "", true},
		{"colorterm other value", "yes", "", false},
		{"colorterm substring does not count", "truecolor-ish", "", false},
		{"term contains truecolor", "", "xterm-truecolor", true},
		{"term contains 24bit uppercase", "", "XTERM-24BIT", true},
		{"term plain xterm", "", "xterm-256color", false},
		{"colorterm wins over term", "truecolor", "dumb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COLORTERM", tt.colorterm)
			t.Setenv("TERM", tt.term)

			if got := SupportsTrueColor(); got != tt.want {
				t.Errorf("SupportsTrueColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportsTrueColor_MissingVariables(t *testing.T) {
	env := map[string]string{}
	if supportsTrueColor(func(k string) string { return env[k] }) {
		t.Error("supportsTrueColor() with no variables = true, want false")
	}
}

func TestSmartColor(t *testing.T) {
	t.Run("truecolor passes through", func(t *testing.T) {
		t.Setenv("COLORTERM", "truecolor")
		t.Setenv("TERM", "xterm")

		c := SmartColor(0xEC5F67)
		if c.IsIndexed() {
			t.Fatal("SmartColor returned indexed color in truecolor mode")
		}
		r, g, b := c.RGB()
		if r != 0xEC || g != 0x5F || b != 0x67 {
			t.Errorf("SmartColor RGB = (%d, %d, %d), want (236, 95, 103)", r, g, b)
		}
	})

	t.Run("quantized without truecolor", func(t *testing.T) {
		t.Setenv("COLORTERM", "")
		t.Setenv("TERM", "xterm-256color")

		c := SmartColor(0xFF0000)
		if !c.IsIndexed() {
			t.Fatal("SmartColor returned RGB color without truecolor support")
		}
		if c.Index() != 196 {
			t.Errorf("SmartColor(0xFF0000).Index() = %d, want 196", c.Index())
		}
	})
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		input  string
		want   Profile
		wantOK bool
	}{
		{"truecolor", TrueColor, true},
		{"24bit", TrueColor, true},
		{" 256 ", ANSI256, true},
		{"ANSI256", ANSI256, true},
		{"auto", ANSI256, false},
		{"", ANSI256, false},
		{"bogus", ANSI256, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseProfile(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseProfile(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDetect_Override(t *testing.T) {
	t.Setenv("COLORTERM", "truecolor")
	t.Setenv("FOLIO_COLOR_MODE", "256")

	if got := Detect(); got != ANSI256 {
		t.Errorf("Detect() with override = %v, want 256", got)
	}

	t.Setenv("FOLIO_COLOR_MODE", "")
	if got := Detect(); got != TrueColor {
		t.Errorf("Detect() = %v, want truecolor", got)
	}
}

func TestProfile_Convert(t *testing.T) {
	if c := TrueColor.Convert(1, 2, 3); c.IsIndexed() {
		t.Error("TrueColor.Convert returned indexed color")
	}
	if c := ANSI256.Convert(0, 0, 255); !c.IsIndexed() || c.Index() != 21 {
		t.Errorf("ANSI256.Convert(blue) = %v, want index 21", c)
	}
}

func TestColor_String(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want string
	}{
		{"default", Color{}, "default"},
		{"rgb", RGB(0xAB, 0x79, 0x67), "#ab7967"},
		{"indexed", Indexed(240), "240"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColor_Lipgloss(t *testing.T) {
	if got := Indexed(21).Lipgloss(); got != lipgloss.Color("21") {
		t.Errorf("Indexed(21).Lipgloss() = %v, want 21", got)
	}
	if got := RGB(255, 0, 0).Lipgloss(); got != lipgloss.Color("#ff0000") {
		t.Errorf("RGB(255,0,0).Lipgloss() = %v, want #ff0000", got)
	}
	if _, ok := (Color{}).Lipgloss().(lipgloss.NoColor); !ok {
		t.Error("default color should map to lipgloss.NoColor")
	}
}

func TestFromColor_DropsAlpha(t *testing.T) {
	c := FromColor(color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	r, g, b := c.RGB()
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("FromColor RGB = (%d, %d, %d), want (10, 20, 30)", r, g, b)
	}
}
