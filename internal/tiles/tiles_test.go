package tiles

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/folio/internal/cellbuf"
	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/colormode"
	"github.com/llehouerou/folio/internal/halfblocks"
)

var font = cellsize.Size{Width: 8, Height: 16}

// bandedImage paints each 16-pixel band a different gray so tiles can be
// told apart after encoding.
func bandedImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		v := uint8((y / 16) * 20)
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func tileIndices(ts []Tile) []int {
	out := make([]int, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Index)
	}
	return out
}

func TestBuild_TileLayout(t *testing.T) {
	tests := []struct {
		name       string
		height     int
		wantCount  int
		wantLastH  int
		wantLastAt int
	}{
		{"exact multiple", 64, 4, 16, 48},
		{"partial last tile", 70, 5, 6, 64},
		{"shorter than one tile", 10, 1, 10, 0},
		{"one pixel", 1, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := Build(bandedImage(40, tt.height), font, colormode.TrueColor)

			require.Equal(t, tt.wantCount, ix.Len())
			for i := range ix.Len() {
				tile, ok := ix.Tile(i)
				require.True(t, ok)
				assert.Equal(t, i, tile.Index)
				assert.Equal(t, i*16, tile.Offset)
			}
			last, _ := ix.Tile(ix.Len() - 1)
			assert.Equal(t, tt.wantLastH, last.Height)
			assert.Equal(t, tt.wantLastAt, last.Offset)
		})
	}
}

func TestBuild_EncodesEachTile(t *testing.T) {
	ix := Build(bandedImage(40, 48), font, colormode.TrueColor)

	for i := range ix.Len() {
		tile, _ := ix.Tile(i)
		require.NotNil(t, tile.Cells)
		assert.Equal(t, cellbuf.NewRect(0, 0, 5, 1), tile.Cells.Area())
		cell, ok := tile.Cells.At(0, 0)
		require.True(t, ok)
		r, _, _ := cell.Upper.RGB()
		assert.InDelta(t, i*20, r, 1, "tile %d color", i)
	}
}

func TestBuild_OffsetBounds(t *testing.T) {
	img := bandedImage(40, 64).SubImage(image.Rect(0, 16, 40, 64))
	ix := Build(img, font, colormode.TrueColor)

	require.Equal(t, 3, ix.Len())
	tile, _ := ix.Tile(0)
	cell, _ := tile.Cells.At(0, 0)
	r, _, _ := cell.Upper.RGB()
	assert.InDelta(t, 20, r, 1)
}

func TestBuild_InvalidFont(t *testing.T) {
	ix := Build(bandedImage(40, 64), cellsize.Size{}, colormode.TrueColor)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.ViewportTiles(0, 10))
	assert.Equal(t, 64, ix.Height())
	assert.Equal(t, 40, ix.Width())
}

func TestViewportTiles(t *testing.T) {
	ix := Build(bandedImage(40, 160), font, colormode.TrueColor) // 10 tiles

	tests := []struct {
		name   string
		scroll int
		rows   int
		want   []int
	}{
		{"top", 0, 3, []int{0, 1, 2}},
		{"aligned scroll", 32, 2, []int{2, 3}},
		{"half tile scroll", 8, 2, []int{0, 1, 2}},
		{"past the end", 144, 5, []int{9}},
		{"beyond image", 500, 3, nil},
		{"zero rows", 0, 0, nil},
		{"whole image", 0, 20, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.ViewportTiles(tt.scroll, tt.rows)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, tileIndices(got))
		})
	}
}

func TestViewportTiles_ExactlyIntersecting(t *testing.T) {
	ix := Build(bandedImage(16, 200), font, colormode.TrueColor)

	for scroll := 0; scroll < 220; scroll += 3 {
		for rows := 1; rows < 6; rows++ {
			lo, hi := scroll, scroll+rows*font.Height
			var want []int
			for i := range ix.Len() {
				tile, _ := ix.Tile(i)
				if tile.Offset < hi && tile.Offset+tile.Height > lo {
					want = append(want, i)
				}
			}
			got := tileIndices(ix.ViewportTiles(scroll, rows))
			if len(want) == 0 {
				assert.Empty(t, got, "scroll=%d rows=%d", scroll, rows)
				continue
			}
			assert.Equal(t, want, got, "scroll=%d rows=%d", scroll, rows)
		}
	}
}

func TestTileRenderOffset(t *testing.T) {
	ix := Build(bandedImage(40, 160), font, colormode.TrueColor)

	tests := []struct {
		tile   int
		scroll int
		want   int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{3, 32, 1},
		{1, 48, -2},
		{2, 8, 1},   // 24/16 truncates
		{0, 8, 0},   // -8/16 truncates toward zero
		{0, 40, -2}, // -40/16
	}

	for _, tt := range tests {
		tile, _ := ix.Tile(tt.tile)
		assert.Equal(t, tt.want, ix.TileRenderOffset(tile, tt.scroll), "tile %d scroll %d", tt.tile, tt.scroll)
	}
}

func TestRenderViewport(t *testing.T) {
	ix := Build(bandedImage(40, 160), font, colormode.TrueColor)
	buf := cellbuf.New(cellbuf.NewRect(0, 0, 5, 3))

	ix.RenderViewport(buf.Area(), 32, buf)

	for row := range 3 {
		c := buf.Cell(0, row)
		require.Equal(t, halfblocks.Glyph, c.Rune, "row %d", row)
		r, _, _ := c.Fg.RGB()
		assert.InDelta(t, (row+2)*20, r, 1, "row %d shows tile %d", row, row+2)
	}
}

func TestRenderViewport_ImageShorterThanArea(t *testing.T) {
	ix := Build(bandedImage(40, 32), font, colormode.TrueColor)
	buf := cellbuf.New(cellbuf.NewRect(0, 0, 5, 4))

	ix.RenderViewport(buf.Area(), 0, buf)

	assert.Equal(t, halfblocks.Glyph, buf.Cell(0, 1).Rune)
	assert.Equal(t, ' ', buf.Cell(0, 2).Rune)
	assert.Equal(t, ' ', buf.Cell(0, 3).Rune)
}
