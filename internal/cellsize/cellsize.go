// Package cellsize describes the pixel size of a terminal font cell.
package cellsize

// Fallback is used when the terminal does not report pixel dimensions.
// Most fonts are roughly twice as tall as they are wide.
var Fallback = Size{Width: 8, Height: 16}

// Size is the width and height of one terminal cell in pixels.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// OrFallback returns s when valid, Fallback otherwise.
func (s Size) OrFallback() Size {
	if s.Valid() {
		return s
	}
	return Fallback
}

// Detect returns the cell size of the terminal attached to stdout.
func Detect() Size {
	return query().OrFallback()
}

// Resolve applies a configured override: a positive width and height win
// over detection.
func Resolve(width, height int) Size {
	if override := (Size{Width: width, Height: height}); override.Valid() {
		return override
	}
	return Detect()
}

// PixelsToCells converts a pixel extent to the number of cells needed to
// cover it, rounding up.
func PixelsToCells(px, cell int) int {
	if cell <= 0 || px <= 0 {
		return 0
	}
	return (px + cell - 1) / cell
}
