// Package tiles slices images into strips one font row tall so a scrolled
// viewport can be painted without re-encoding the whole image.
package tiles

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/llehouerou/folio/internal/cellbuf"
	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/colormode"
	"github.com/llehouerou/folio/internal/halfblocks"
)

// Tile is a horizontal strip of the source image.
type Tile struct {
	// Index is the position of the tile, 0 at the top.
	Index int
	// Offset is the distance from the top of the image in pixels.
	Offset int
	// Height is the strip height in pixels. Every tile is one font cell
	// tall except possibly the last.
	Height int
	// Cells is the strip encoded as a single row of half-block cells.
	Cells *halfblocks.Image
}

// Index holds the tiles of one image in top-to-bottom order.
type Index struct {
	width  int
	height int
	font   cellsize.Size
	tiles  []Tile
}

// Build slices img into strips of font.Height pixels and encodes each strip
// for a row of ceil(width/font.Width) cells. An invalid font size yields an
// empty index.
func Build(img image.Image, font cellsize.Size, profile colormode.Profile) *Index {
	b := img.Bounds()
	ix := &Index{width: b.Dx(), height: b.Dy(), font: font}
	if !font.Valid() || b.Empty() {
		return ix
	}

	tileHeight := font.Height
	count := (ix.height + tileHeight - 1) / tileHeight
	rowArea := cellbuf.NewRect(0, 0, cellsize.PixelsToCells(ix.width, font.Width), 1)

	ix.tiles = make([]Tile, 0, count)
	for i := range count {
		offset := i * tileHeight
		h := min(tileHeight, ix.height-offset)
		strip := crop(img, image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+h))
		ix.tiles = append(ix.tiles, Tile{
			Index:  i,
			Offset: offset,
			Height: h,
			Cells:  halfblocks.New(strip, rowArea, profile),
		})
	}
	return ix
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

// Width returns the source image width in pixels.
func (ix *Index) Width() int { return ix.width }

// Height returns the source image height in pixels.
func (ix *Index) Height() int { return ix.height }

// Len returns the number of tiles.
func (ix *Index) Len() int { return len(ix.tiles) }

// HeightCells returns the number of terminal rows the image spans.
func (ix *Index) HeightCells() int { return len(ix.tiles) }

// Tile returns tile i.
func (ix *Index) Tile(i int) (Tile, bool) {
	if i < 0 || i >= len(ix.tiles) {
		return Tile{}, false
	}
	return ix.tiles[i], true
}

// ViewportTiles returns the tiles intersecting the pixel range
// [scrollPx, scrollPx+viewportRows*font.Height), in ascending order.
func (ix *Index) ViewportTiles(scrollPx, viewportRows int) []Tile {
	if len(ix.tiles) == 0 || viewportRows <= 0 {
		return nil
	}
	tileHeight := ix.font.Height
	scrollPx = max(scrollPx, 0)

	start := scrollPx / tileHeight
	end := (scrollPx + viewportRows*ix.font.Height + tileHeight - 1) / tileHeight

	var visible []Tile
	for i := start; i < end; i++ {
		if t, ok := ix.Tile(i); ok {
			visible = append(visible, t)
		}
	}
	return visible
}

// TileRenderOffset returns the viewport row where t starts, truncated toward
// zero. It is negative for tiles that start above the viewport.
func (ix *Index) TileRenderOffset(t Tile, scrollPx int) int {
	if ix.font.Height <= 0 {
		return 0
	}
	return (t.Offset - scrollPx) / ix.font.Height
}

// RenderViewport paints the tiles visible at scrollPx into area of buf, one
// tile per row. Rows that fall outside area are skipped.
func (ix *Index) RenderViewport(area cellbuf.Rect, scrollPx int, buf *cellbuf.Buffer) {
	if area.Empty() {
		return
	}
	for _, t := range ix.ViewportTiles(scrollPx, area.Height) {
		row := ix.TileRenderOffset(t, scrollPx)
		if row < 0 || row >= area.Height {
			continue
		}
		t.Cells.Render(cellbuf.NewRect(area.X, area.Y+row, area.Width, 1), buf)
	}
}
