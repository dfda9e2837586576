// Package imageloader decodes and resizes document images off the UI
// goroutine, one job at a time, with cooperative cancellation.
package imageloader

import (
	"context"
	"image"
	"time"

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/logging"
	"github.com/llehouerou/folio/internal/task"
)

// Request asks for one image scaled to a height in terminal rows.
type Request struct {
	Source string
	Rows   int
}

// Resized is a bitmap scaled for display plus its size in cells.
type Resized struct {
	Image       image.Image
	WidthCells  int
	HeightCells int
}

// Source loads and resizes images by source id. Implementations are called
// from the loader's goroutine and must be safe for concurrent use.
type Source interface {
	LoadAndResize(src string, rows int, cell cellsize.Size) (Resized, error)
}

// Batch is the outcome of one job.
type Batch struct {
	// Images maps source ids to their resized bitmaps.
	Images map[string]image.Image
	// Failed maps source ids that could not be loaded to the reason.
	Failed map[string]error
	// Err is set when the job itself failed, e.g. the worker panicked.
	Err error
}

// Loader runs background image jobs. At most one job is outstanding; the
// owner polls for its batch once per frame.
type Loader struct {
	runner task.Runner[Batch]
}

// New returns an idle loader.
func New() *Loader {
	return &Loader{}
}

// Start loads reqs in order on a new goroutine. It returns false, without
// starting anything, when a job is already in progress.
func (l *Loader) Start(reqs []Request, src Source, cell cellsize.Size) bool {
	reqs = append([]Request(nil), reqs...)
	started := l.runner.Start(func(ctx context.Context) (Batch, error) {
		return load(ctx, reqs, src, cell), nil
	})
	if !started {
		logging.Logger().Debug("background image loading already in progress, skipping")
	}
	return started
}

func load(ctx context.Context, reqs []Request, src Source, cell cellsize.Size) Batch {
	log := logging.Logger()
	start := time.Now()
	batch := Batch{
		Images: make(map[string]image.Image, len(reqs)),
		Failed: make(map[string]error),
	}

	for _, req := range reqs {
		if ctx.Err() != nil {
			log.Debug("background image loading cancelled")
			return Batch{}
		}

		resized, err := src.LoadAndResize(req.Source, req.Rows, cell)
		if err != nil {
			log.Warn("failed to load and resize image", "src", req.Source, "err", err)
			batch.Failed[req.Source] = err
			continue
		}
		batch.Images[req.Source] = resized.Image
	}

	log.Info("background image loading complete",
		"loaded", len(batch.Images),
		"failed", len(batch.Failed),
		"elapsed", time.Since(start))
	return batch
}

// Cancel stops the outstanding job, if any, and makes the loader idle. The
// worker finishes its current image in the background and its batch is
// discarded.
func (l *Loader) Cancel() {
	if l.runner.Active() {
		logging.Logger().Debug("cancelling background image loading")
	}
	l.runner.Cancel()
}

// Poll returns the batch of the outstanding job if it has finished.
func (l *Loader) Poll() (Batch, bool) {
	res, ok := l.runner.TryResult()
	if !ok {
		return Batch{}, false
	}
	batch := res.Value
	if res.Err != nil {
		logging.Logger().Error("background image loading failed", "err", res.Err)
		batch.Err = res.Err
	}
	logging.Logger().Debug("received loaded images", "count", len(batch.Images))
	return batch, true
}

// Loading reports whether a job is in progress.
func (l *Loader) Loading() bool {
	return l.runner.Active()
}
