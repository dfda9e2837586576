// Package halfblocks encodes images as grids of upper-half-block cells.
//
// Each cell shows two vertically stacked pixels: the foreground paints the
// upper half through the ▀ glyph and the background shows the lower half.
// This assumes a font aspect ratio of roughly 1:2 and works in every
// terminal that supports colors.
package halfblocks

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"

	"github.com/llehouerou/folio/internal/cellbuf"
	"github.com/llehouerou/folio/internal/colormode"
)

// Glyph is the character drawn in every encoded cell.
const Glyph = '▀'

// HalfBlock is one encoded cell.
type HalfBlock struct {
	Upper colormode.Color
	Lower colormode.Color
}

// Image is an image encoded for a fixed cell area.
type Image struct {
	profile colormode.Profile
	cells   []HalfBlock
	area    cellbuf.Rect
}

// New encodes img for area using the colors of profile.
func New(img image.Image, area cellbuf.Rect, profile colormode.Profile) *Image {
	h := &Image{profile: profile}
	h.ResizeEncode(img, area)
	return h
}

// ResizeEncode discards the current grid and encodes img for area.
func (h *Image) ResizeEncode(img image.Image, area cellbuf.Rect) {
	h.cells = encode(img, area, h.profile)
	h.area = area
}

// Area returns the cell area the grid was encoded for.
func (h *Image) Area() cellbuf.Rect { return h.area }

// Cells returns the encoded grid in row-major order.
func (h *Image) Cells() []HalfBlock { return h.cells }

// At returns the cell at column x, row y of the grid.
func (h *Image) At(x, y int) (HalfBlock, bool) {
	if x < 0 || y < 0 || x >= h.area.Width || y >= h.area.Height {
		return HalfBlock{}, false
	}
	return h.cells[y*h.area.Width+x], true
}

// Render paints the grid into buf at area. Only the overlap between area and
// the encoded size is painted, so a grid encoded for a stale size during a
// resize never reads or writes out of bounds.
func (h *Image) Render(area cellbuf.Rect, buf *cellbuf.Buffer) {
	if area.Empty() || len(h.cells) == 0 {
		return
	}

	width := min(area.Width, h.area.Width)
	height := min(area.Height, h.area.Height)

	for y := range height {
		dst := buf.Row(area.X, area.Y+y, width)
		if dst == nil {
			continue
		}
		// Row clips on the left when area starts outside the buffer.
		skip := max(0, buf.Area().X-area.X)
		src := h.cells[y*h.area.Width+skip : y*h.area.Width+width]
		for i := range min(len(dst), len(src)) {
			dst[i] = cellbuf.Cell{Fg: src[i].Upper, Bg: src[i].Lower, Rune: Glyph}
		}
	}
}

func encode(img image.Image, area cellbuf.Rect, profile colormode.Profile) []HalfBlock {
	if img == nil || area.Empty() {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	width := area.Width
	resized := resize.Resize(uint(width), uint(area.Height*2), img, resize.Bilinear) //nolint:gosec // area is positive

	cells := make([]HalfBlock, width*area.Height)
	rb := resized.Bounds()
	rows := min(rb.Dy(), area.Height*2)
	cols := min(rb.Dx(), width)

	for y := range rows {
		for x := range cols {
			r, g, bl := pixelAt(resized, rb.Min.X+x, rb.Min.Y+y)
			c := profile.Convert(r, g, bl)
			cell := &cells[x+width*(y/2)]
			if y%2 == 0 {
				cell.Upper = c
			} else {
				cell.Lower = c
			}
		}
	}
	return cells
}

// pixelAt returns the straight (non-premultiplied) RGB of a pixel.
func pixelAt(img image.Image, x, y int) (r, g, b uint8) {
	if n, ok := img.(*image.NRGBA); ok {
		i := n.PixOffset(x, y)
		return n.Pix[i], n.Pix[i+1], n.Pix[i+2]
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) //nolint:errcheck,forcetypeassert // NRGBAModel always returns NRGBA
	return c.R, c.G, c.B
}
