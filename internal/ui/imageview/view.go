package imageview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/folio/internal/cellbuf"
	"github.com/llehouerou/folio/internal/colormode"
	"github.com/llehouerou/folio/internal/ui/render"
)

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.Size()
	if width <= 0 || height <= 0 {
		return ""
	}

	viewport := m.viewportRows()
	buf := cellbuf.New(cellbuf.NewRect(0, 0, width, viewport))

	if len(m.entries) == 0 {
		buf.SetString(1, 0, "No images", m.palette.Base03)
	}

	top := 0
	for i, e := range m.entries {
		if top >= m.scroll+viewport {
			break
		}
		if top+e.blockRows() > m.scroll {
			if top >= m.scroll {
				m.renderCaption(buf, i, e, top-m.scroll)
			}
			if first, count, screen := visibleRows(top+1, e.Rows, m.scroll, viewport); count > 0 {
				m.renderBody(buf, e, first, count, screen)
			}
		}
		top += e.blockRows()
	}

	lines := buf.Lines()
	lines = append(lines, m.statusLine(width))
	return strings.Join(lines, "\n")
}

func (m *Model) renderCaption(buf *cellbuf.Buffer, i int, e *Entry, row int) {
	fg := m.palette.Base03
	if e.State == StateLoaded {
		fg = m.palette.Base0D
	}
	caption := fmt.Sprintf("%d. %s", i+1, e.Source)
	if e.Width > 0 && e.Height > 0 {
		caption += fmt.Sprintf("  %dx%d", e.Width, e.Height)
	}
	buf.SetString(0, row, render.Truncate(caption, buf.Area().Width), fg)
}

func (m *Model) renderBody(buf *cellbuf.Buffer, e *Entry, first, count, row int) {
	if e.State == StateLoaded {
		e.render(cellbuf.NewRect(0, row, buf.Area().Width, count), first, m, buf)
		return
	}
	if first != 0 {
		return
	}

	var text string
	var fg colormode.Color
	switch e.State {
	case StateNotLoaded:
		text, fg = "  queued", m.palette.Base03
	case StateLoading:
		text, fg = "  loading…", m.palette.Base0C
	case StateUnsupported:
		text, fg = "  unsupported image format", m.palette.Base0A
	case StateFailed:
		text, fg = "  ✗ "+errText(e.Err), m.palette.Base08
	}
	buf.SetString(0, row, render.Truncate(text, buf.Area().Width), fg)
}

func errText(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}

func (m *Model) statusLine(width int) string {
	s := m.palette.S()

	if m.prompting {
		return s.StatusBar.Width(width).Render(ansi.Truncate(" go to image: "+m.prompt.View(), width, "…"))
	}

	var loaded, failed int
	var decoded uint64
	for _, e := range m.entries {
		switch e.State {
		case StateLoaded:
			loaded++
			decoded += e.decodedBytes()
		case StateFailed, StateUnsupported:
			failed++
		case StateNotLoaded, StateLoading:
		}
	}

	left := []string{
		m.palette.Gradient(" folio ", m.palette.Base0D, m.palette.Base0E),
		fmt.Sprintf("%d/%d loaded", loaded, len(m.entries)),
	}
	if failed > 0 {
		left = append(left, s.Error.Render(fmt.Sprintf("%d failed", failed)))
	}
	if m.skipped > 0 {
		left = append(left, s.Muted.Render(fmt.Sprintf("%d small skipped", m.skipped)))
	}
	if m.lastErr != "" {
		left = append(left, s.Error.Render(m.lastErr))
	}

	var right []string
	if m.loader.Loading() {
		right = append(right, s.Accent.Render("loading…"))
	}
	if decoded > 0 {
		right = append(right, humanize.Bytes(decoded))
	}

	line := render.Row(strings.Join(left, "  "), strings.Join(right, "  ")+" ", width)
	return s.StatusBar.Width(width).Render(ansi.Truncate(line, width, "…"))
}
