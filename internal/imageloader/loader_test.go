package imageloader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/logging"
)

var errMissing = errors.New("image not found")

var cell = cellsize.Size{Width: 8, Height: 16}

// fakeSource returns a tiny bitmap per id. Ids listed in fail return an
// error; a non-nil gate blocks every call until it is closed.
type fakeSource struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	gate  chan struct{}
	panic string
}

func (f *fakeSource) LoadAndResize(src string, rows int, c cellsize.Size) (Resized, error) {
	f.mu.Lock()
	f.calls = append(f.calls, src)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if src == f.panic {
		panic("corrupt image " + src)
	}
	if f.fail[src] {
		return Resized{}, fmt.Errorf("open %s: %w", src, errMissing)
	}
	img := image.NewRGBA(image.Rect(0, 0, rows*c.Width, rows*c.Height))
	return Resized{Image: img, WidthCells: rows, HeightCells: rows}, nil
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func requests(ids ...string) []Request {
	reqs := make([]Request, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, Request{Source: id, Rows: 2})
	}
	return reqs
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetLogger(logging.New(&buf, slog.LevelDebug))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return &buf
}

func TestLoader_IdleAtConstruction(t *testing.T) {
	l := New()

	assert.False(t, l.Loading())
	_, ok := l.Poll()
	assert.False(t, ok)
}

func TestLoader_EndToEnd_OneFailure(t *testing.T) {
	logs := captureLogs(t)

	synctest.Test(t, func(t *testing.T) {
		src := &fakeSource{fail: map[string]bool{"c.png": true}}
		l := New()

		require.True(t, l.Start(requests("a.png", "b.png", "c.png", "d.png", "e.png"), src, cell))
		assert.True(t, l.Loading())
		synctest.Wait()

		batch, ok := l.Poll()
		require.True(t, ok)
		assert.False(t, l.Loading())
		assert.NoError(t, batch.Err)

		assert.Len(t, batch.Images, 4)
		assert.NotContains(t, batch.Images, "c.png")
		require.Contains(t, batch.Failed, "c.png")
		assert.ErrorIs(t, batch.Failed["c.png"], errMissing)
		assert.Equal(t, 32, batch.Images["a.png"].Bounds().Dy())
	})

	assert.Contains(t, logs.String(), "src=c.png")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestLoader_ProcessesInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &fakeSource{}
		l := New()

		require.True(t, l.Start(requests("3", "1", "2"), src, cell))
		synctest.Wait()

		_, ok := l.Poll()
		require.True(t, ok)
		assert.Equal(t, []string{"3", "1", "2"}, src.Calls())
	})
}

func TestLoader_StartWhileLoading(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		gate := make(chan struct{})
		src := &fakeSource{gate: gate}
		other := &fakeSource{}
		l := New()

		require.True(t, l.Start(requests("a"), src, cell))
		assert.False(t, l.Start(requests("b"), other, cell))
		assert.False(t, l.Start(requests("c"), other, cell))

		close(gate)
		synctest.Wait()

		batch, ok := l.Poll()
		require.True(t, ok)
		assert.Contains(t, batch.Images, "a")
		assert.Empty(t, other.Calls(), "rejected jobs never run")

		// Idle again: a new job is accepted.
		require.True(t, l.Start(requests("b"), other, cell))
		synctest.Wait()
		batch, ok = l.Poll()
		require.True(t, ok)
		assert.Contains(t, batch.Images, "b")
	})
}

func TestLoader_PollBeforeCompletion(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		gate := make(chan struct{})
		l := New()

		require.True(t, l.Start(requests("a", "b"), &fakeSource{gate: gate}, cell))
		synctest.Wait()

		_, ok := l.Poll()
		assert.False(t, ok)
		assert.True(t, l.Loading(), "an empty poll leaves the state unchanged")

		close(gate)
		synctest.Wait()
		_, ok = l.Poll()
		assert.True(t, ok)
	})
}

func TestLoader_CancelMidFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		gate := make(chan struct{})
		src := &fakeSource{gate: gate}
		l := New()

		require.True(t, l.Start(requests("a", "b", "c"), src, cell))
		synctest.Wait() // worker is blocked inside the first image

		l.Cancel()
		assert.False(t, l.Loading())

		close(gate)
		synctest.Wait()

		_, ok := l.Poll()
		assert.False(t, ok, "a cancelled job never delivers")
		assert.Equal(t, []string{"a"}, src.Calls(), "the in-flight image completes, the rest are skipped")
	})
}

func TestLoader_CancelThenRestart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		gate := make(chan struct{})
		stale := &fakeSource{gate: gate}
		fresh := &fakeSource{}
		l := New()

		require.True(t, l.Start(requests("old"), stale, cell))
		synctest.Wait()
		l.Cancel()

		require.True(t, l.Start(requests("new"), fresh, cell))
		close(gate)
		synctest.Wait()

		batch, ok := l.Poll()
		require.True(t, ok)
		assert.Contains(t, batch.Images, "new")
		assert.NotContains(t, batch.Images, "old")

		_, ok = l.Poll()
		assert.False(t, ok)
	})
}

func TestLoader_CancelWhenIdle(t *testing.T) {
	l := New()
	l.Cancel()
	assert.False(t, l.Loading())
}

func TestLoader_WorkerPanic(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()

		require.True(t, l.Start(requests("a", "bad"), &fakeSource{panic: "bad"}, cell))
		synctest.Wait()

		batch, ok := l.Poll()
		require.True(t, ok)
		require.Error(t, batch.Err)
		assert.Empty(t, batch.Images)
		assert.False(t, l.Loading())
	})
}

func TestLoader_EmptyJob(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()

		require.True(t, l.Start(nil, &fakeSource{}, cell))
		synctest.Wait()

		batch, ok := l.Poll()
		require.True(t, ok)
		assert.Empty(t, batch.Images)
		assert.Empty(t, batch.Failed)
	})
}
