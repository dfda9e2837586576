// Package imageview shows the images of a document as a scrollable column,
// loading them in the background and painting them with half-block cells.
package imageview

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/colormode"
	"github.com/llehouerou/folio/internal/errmsg"
	"github.com/llehouerou/folio/internal/imageloader"
	"github.com/llehouerou/folio/internal/imagestore"
	"github.com/llehouerou/folio/internal/logging"
	"github.com/llehouerou/folio/internal/theme"
	"github.com/llehouerou/folio/internal/tiles"
	"github.com/llehouerou/folio/internal/ui"
)

// Compile-time check that Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

const (
	defaultPollInterval = 50 * time.Millisecond
	statusHeight        = 1
)

// Store probes and loads images by href.
type Store interface {
	imageloader.Source
	Size(href, chapter string) (width, height int, err error)
}

// Options configures the view.
type Options struct {
	// MinSize ignores images narrower or shorter than this many pixels.
	MinSize int
	MinRows int
	MaxRows int
	// Tiled paints loaded images through a tile index instead of
	// re-encoding the visible part on every scroll.
	Tiled        bool
	Cell         cellsize.Size
	Profile      colormode.Profile
	PollInterval time.Duration
}

type pollMsg struct{}

// Model holds the state of the image column.
type Model struct {
	ui.Base
	store   Store
	loader  *imageloader.Loader
	opts    Options
	keys    keyMap
	palette *theme.Palette

	entries []*Entry
	byID    map[string]*Entry
	skipped int

	scroll  int // first document row shown
	polling bool
	lastErr string

	prompt    textinput.Model
	prompting bool
}

// New creates an empty view backed by store.
func New(store Store, opts Options) *Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	opts.Cell = opts.Cell.OrFallback()
	opts.MinRows = max(1, opts.MinRows)
	opts.MaxRows = max(opts.MinRows, opts.MaxRows)

	ti := textinput.New()
	ti.Placeholder = "image number"
	ti.CharLimit = 8
	ti.Width = 12

	return &Model{
		store:   store,
		loader:  imageloader.New(),
		opts:    opts,
		keys:    defaultKeys(),
		palette: theme.Current(),
		byID:    make(map[string]*Entry),
		prompt:  ti,
	}
}

// Add appends the images at hrefs, as referenced from chapter, and starts
// loading them. Images smaller than the minimum size are ignored.
func (m *Model) Add(chapter string, hrefs ...string) tea.Cmd {
	log := logging.Logger()
	for _, href := range hrefs {
		if _, ok := m.byID[href]; ok {
			continue
		}

		w, h, err := m.store.Size(href, chapter)
		e := &Entry{Source: href, Width: w, Height: h}
		switch {
		case err != nil:
			log.Warn("could not read image size", "src", href, "err", err)
			e.State = StateFailed
			e.Err = err
		case w < m.opts.MinSize || h < m.opts.MinSize:
			log.Debug("ignoring small image", "src", href, "width", w, "height", h)
			m.skipped++
			continue
		}
		e.Rows = m.rowsFor(e)

		m.entries = append(m.entries, e)
		m.byID[href] = e
	}
	return m.startLoading()
}

// Entries returns the tracked images in document order.
func (m *Model) Entries() []*Entry {
	return m.entries
}

// Entry returns the image tracked for src.
func (m *Model) Entry(src string) (*Entry, bool) {
	e, ok := m.byID[src]
	return e, ok
}

// Scroll returns the first document row shown.
func (m *Model) Scroll() int {
	return m.scroll
}

func (m *Model) rowsFor(e *Entry) int {
	return rowsFor(e.Width, e.Height, m.opts.Cell, m.opts.MinRows, m.opts.MaxRows, m.Width())
}

// startLoading queues every image that is not loaded yet, unless a job is
// already running; the remaining images are picked up when it completes.
func (m *Model) startLoading() tea.Cmd {
	if m.loader.Loading() {
		return m.schedulePoll()
	}

	var reqs []imageloader.Request
	for _, e := range m.entries {
		if e.State == StateNotLoaded {
			reqs = append(reqs, imageloader.Request{Source: e.Source, Rows: e.Rows})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	if !m.loader.Start(reqs, m.store, m.opts.Cell) {
		return m.schedulePoll()
	}

	for _, r := range reqs {
		m.byID[r.Source].State = StateLoading
	}
	return m.schedulePoll()
}

func (m *Model) schedulePoll() tea.Cmd {
	if m.polling {
		return nil
	}
	m.polling = true
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Init implements tea.Model. Polls scheduled before the program started
// were never delivered, so polling starts afresh.
func (m *Model) Init() tea.Cmd {
	m.polling = false
	return m.startLoading()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.handleResize(msg.Width, msg.Height)
	case pollMsg:
		return m, m.handlePoll()
	case tea.KeyMsg:
		if m.prompting {
			return m, m.handlePromptKey(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handlePoll() tea.Cmd {
	m.polling = false

	batch, ok := m.loader.Poll()
	if !ok {
		if m.loader.Loading() {
			return m.schedulePoll()
		}
		return nil
	}

	m.merge(batch)
	return m.startLoading()
}

// merge applies a finished batch. Images for sources that are no longer
// waiting on a load are dropped.
func (m *Model) merge(batch imageloader.Batch) {
	log := logging.Logger()

	if batch.Err != nil {
		m.lastErr = errmsg.Format(errmsg.OpImageLoad, batch.Err)
	}

	for src, img := range batch.Images {
		e, ok := m.byID[src]
		if !ok || e.State != StateLoading {
			log.Warn("discarding image for untracked source", "src", src)
			continue
		}
		e.image = img
		e.State = StateLoaded
		if m.opts.Tiled {
			e.tiles = tiles.Build(img, m.opts.Cell, m.opts.Profile)
		}
	}

	for src, err := range batch.Failed {
		e, ok := m.byID[src]
		if !ok || e.State != StateLoading {
			log.Warn("discarding failure for untracked source", "src", src)
			continue
		}
		e.Err = err
		e.State = StateFailed
		if errors.Is(err, imagestore.ErrUnsupported) {
			e.State = StateUnsupported
		}
	}

	for _, e := range m.entries {
		if e.State != StateLoading {
			continue
		}
		if batch.Err != nil {
			e.State = StateFailed
			e.Err = batch.Err
		} else {
			e.State = StateNotLoaded
		}
	}
}

// handleResize recomputes image heights for the new width. Images whose
// height changed are resized again; the running job is cancelled since it
// targets the old heights.
func (m *Model) handleResize(width, height int) tea.Cmd {
	m.SetSize(width, height)

	changed := false
	for _, e := range m.entries {
		e.encoded = nil
		rows := m.rowsFor(e)
		if rows == e.Rows {
			continue
		}
		e.Rows = rows
		if e.State == StateLoaded || e.State == StateLoading {
			e.reset()
			changed = true
		}
	}
	m.clampScroll()

	if !changed {
		return nil
	}

	m.loader.Cancel()
	for _, e := range m.entries {
		if e.State == StateLoading {
			e.State = StateNotLoaded
		}
	}
	return m.startLoading()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	page := max(1, m.viewportRows()/2)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.loader.Cancel()
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(page)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-page)
	case key.Matches(msg, m.keys.Top):
		m.scroll = 0
	case key.Matches(msg, m.keys.Bottom):
		m.scroll = m.maxScroll()
	case key.Matches(msg, m.keys.Next):
		m.jumpNext()
	case key.Matches(msg, m.keys.Prev):
		m.jumpPrev()
	case key.Matches(msg, m.keys.GoTo):
		m.prompting = true
		m.prompt.SetValue("")
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.Retry):
		return m.retryFailed()
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type { //nolint:exhaustive // only enter and escape leave the prompt
	case tea.KeyEnter:
		m.prompting = false
		m.prompt.Blur()
		n, err := strconv.Atoi(strings.TrimSpace(m.prompt.Value()))
		if err == nil {
			m.jumpTo(n - 1)
		}
		return nil
	case tea.KeyEscape:
		m.prompting = false
		m.prompt.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) retryFailed() tea.Cmd {
	retried := 0
	for _, e := range m.entries {
		if e.State == StateFailed {
			e.reset()
			retried++
		}
	}
	if retried == 0 {
		return nil
	}
	logging.Logger().Info("retrying failed images", "count", retried)
	m.lastErr = ""
	return m.startLoading()
}

func (m *Model) viewportRows() int {
	return max(0, m.Height()-statusHeight)
}

func (m *Model) documentRows() int {
	total := 0
	for _, e := range m.entries {
		total += e.blockRows()
	}
	return total
}

func (m *Model) maxScroll() int {
	return max(0, m.documentRows()-m.viewportRows())
}

func (m *Model) scrollBy(delta int) {
	m.scroll += delta
	m.clampScroll()
}

func (m *Model) clampScroll() {
	m.scroll = max(0, min(m.scroll, m.maxScroll()))
}

// entryTop returns the document row of the caption of entry i.
func (m *Model) entryTop(i int) int {
	top := 0
	for _, e := range m.entries[:i] {
		top += e.blockRows()
	}
	return top
}

func (m *Model) jumpTo(i int) {
	if i < 0 || i >= len(m.entries) {
		return
	}
	m.scroll = m.entryTop(i)
	m.clampScroll()
}

func (m *Model) jumpNext() {
	top := 0
	for _, e := range m.entries {
		if top > m.scroll {
			m.scroll = top
			m.clampScroll()
			return
		}
		top += e.blockRows()
	}
}

func (m *Model) jumpPrev() {
	prev := 0
	top := 0
	for _, e := range m.entries {
		if top >= m.scroll {
			break
		}
		prev = top
		top += e.blockRows()
	}
	m.scroll = prev
	m.clampScroll()
}
