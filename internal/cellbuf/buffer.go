// Package cellbuf holds terminal cell state written by the image encoders.
package cellbuf

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/folio/internal/colormode"
)

// Cell is one terminal character position.
type Cell struct {
	Fg   colormode.Color
	Bg   colormode.Color
	Rune rune
}

var blank = Cell{Rune: ' '}

// Buffer is a rectangular region of cells in absolute terminal coordinates.
type Buffer struct {
	area  Rect
	cells []Cell
}

// New returns a blank buffer covering area.
func New(area Rect) *Buffer {
	b := &Buffer{area: area, cells: make([]Cell, area.Area())}
	b.Reset()
	return b
}

// Area returns the region covered by the buffer.
func (b *Buffer) Area() Rect { return b.area }

// Reset blanks every cell.
func (b *Buffer) Reset() {
	for i := range b.cells {
		b.cells[i] = blank
	}
}

// Index returns the offset of cell (x, y) in the backing slice.
func (b *Buffer) Index(x, y int) (int, bool) {
	if !b.area.Contains(x, y) {
		return 0, false
	}
	return (y-b.area.Y)*b.area.Width + (x - b.area.X), true
}

// Cell returns the cell at (x, y), or nil outside the buffer.
func (b *Buffer) Cell(x, y int) *Cell {
	i, ok := b.Index(x, y)
	if !ok {
		return nil
	}
	return &b.cells[i]
}

// Row returns the cells of row y between columns x and x+width, clipped to
// the buffer. It returns nil when nothing overlaps.
func (b *Buffer) Row(x, y, width int) []Cell {
	clip := b.area.Intersect(Rect{X: x, Y: y, Width: width, Height: 1})
	if clip.Empty() {
		return nil
	}
	start, _ := b.Index(clip.X, clip.Y)
	return b.cells[start : start+clip.Width]
}

// SetString writes s starting at (x, y) with the given foreground, skipping
// characters that would fall outside the buffer. Wide characters occupy
// their full width; the trailing columns are cleared.
func (b *Buffer) SetString(x, y int, s string, fg colormode.Color) {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if c := b.Cell(col, y); c != nil {
			*c = Cell{Fg: fg, Rune: r}
		}
		for i := 1; i < w; i++ {
			if c := b.Cell(col+i, y); c != nil {
				*c = Cell{}
			}
		}
		col += w
	}
}

// Lines renders each row to a styled string. Runs of cells sharing the same
// colors are rendered with a single style.
func (b *Buffer) Lines() []string {
	lines := make([]string, 0, b.area.Height)
	for y := range b.area.Height {
		row := b.cells[y*b.area.Width : (y+1)*b.area.Width]
		lines = append(lines, renderRow(row))
	}
	return lines
}

// String renders the whole buffer, rows joined by newlines.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}

func renderRow(row []Cell) string {
	var sb strings.Builder
	var run strings.Builder
	for i := 0; i < len(row); {
		fg, bg := row[i].Fg, row[i].Bg
		run.Reset()
		for ; i < len(row) && row[i].Fg == fg && row[i].Bg == bg; i++ {
			if row[i].Rune != 0 {
				run.WriteRune(row[i].Rune)
			}
		}
		if fg.IsDefault() && bg.IsDefault() {
			sb.WriteString(run.String())
			continue
		}
		style := lipgloss.NewStyle().Foreground(fg.Lipgloss()).Background(bg.Lipgloss())
		sb.WriteString(style.Render(run.String()))
	}
	return sb.String()
}
