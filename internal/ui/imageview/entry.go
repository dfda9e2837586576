package imageview

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/llehouerou/folio/internal/cellbuf"
	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/halfblocks"
	"github.com/llehouerou/folio/internal/tiles"
)

// State is the load state of one embedded image.
type State int

const (
	StateNotLoaded State = iota
	StateLoading
	StateLoaded
	StateFailed
	StateUnsupported
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not loaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Entry is one image shown in the document.
type Entry struct {
	Source string
	// Width and Height are the source dimensions in pixels.
	Width  int
	Height int
	// Rows is the display height in terminal rows.
	Rows  int
	State State
	Err   error

	image image.Image
	tiles *tiles.Index

	// Last full encode, used when tiling is off.
	encoded    *halfblocks.Image
	encodedKey encodeKey
}

type encodeKey struct {
	first, rows, width int
}

// blockRows is the height of the entry in the document: a caption line
// followed by the image.
func (e *Entry) blockRows() int {
	return 1 + e.Rows
}

// reset drops the decoded bitmap so the entry is loaded again.
func (e *Entry) reset() {
	e.State = StateNotLoaded
	e.Err = nil
	e.image = nil
	e.tiles = nil
	e.encoded = nil
}

// decodedBytes approximates the memory held by the resized bitmap.
func (e *Entry) decodedBytes() uint64 {
	if e.image == nil {
		return 0
	}
	b := e.image.Bounds()
	return uint64(b.Dx()) * uint64(b.Dy()) * 4 //nolint:gosec // non-negative
}

// rowsFor returns the display height of a width x height image: its natural
// height in rows clamped to [minRows, maxRows], then reduced so the scaled
// width fits maxCols.
func rowsFor(width, height int, cell cellsize.Size, minRows, maxRows, maxCols int) int {
	if width <= 0 || height <= 0 || !cell.Valid() {
		return minRows
	}

	rows := cellsize.PixelsToCells(height, cell.Height)
	rows = max(minRows, min(rows, maxRows))

	if maxCols > 0 {
		// Scaled width in pixels is width * rows*cell.Height / height.
		if fit := maxCols * cell.Width * height / (width * cell.Height); fit < rows {
			rows = max(1, fit)
		}
	}
	return rows
}

// visibleRows returns the image rows of e shown by a viewport starting at
// document row scroll, given that the image starts at document row top.
// first is the first visible image row; screen is the viewport row it lands
// on.
func visibleRows(top, rows, scroll, viewport int) (first, count, screen int) {
	start := max(top, scroll)
	end := min(top+rows, scroll+viewport)
	if end <= start {
		return 0, 0, 0
	}
	return start - top, end - start, start - scroll
}

// render paints the visible image rows of e into buf.
func (e *Entry) render(area cellbuf.Rect, first int, m *Model, buf *cellbuf.Buffer) {
	if e.image == nil || area.Empty() {
		return
	}

	if e.tiles != nil {
		e.tiles.RenderViewport(area, first*m.opts.Cell.Height, buf)
		return
	}

	key := encodeKey{first: first, rows: area.Height, width: area.Width}
	if e.encoded == nil || e.encodedKey != key {
		b := e.image.Bounds()
		top := b.Min.Y + first*m.opts.Cell.Height
		bottom := min(b.Max.Y, top+area.Height*m.opts.Cell.Height)
		if bottom <= top {
			return
		}
		width := min(area.Width, cellsize.PixelsToCells(b.Dx(), m.opts.Cell.Width))
		right := min(b.Max.X, b.Min.X+width*m.opts.Cell.Width)
		visible := crop(e.image, image.Rect(b.Min.X, top, right, bottom))
		encodeArea := cellbuf.NewRect(0, 0, width, cellsize.PixelsToCells(bottom-top, m.opts.Cell.Height))
		if e.encoded == nil {
			e.encoded = halfblocks.New(visible, encodeArea, m.opts.Profile)
		} else {
			e.encoded.ResizeEncode(visible, encodeArea)
		}
		e.encodedKey = key
	}
	e.encoded.Render(area, buf)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
