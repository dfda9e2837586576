// Package task runs at most one cancellable background job at a time and
// hands its result back through a non-blocking poll.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/llehouerou/folio/internal/logging"
)

// ErrPanic is wrapped by the error of a job whose function panicked.
var ErrPanic = errors.New("task panicked")

// Func is the work of one job. It should check ctx between units of work
// and return early once ctx is done.
type Func[T any] func(ctx context.Context) (T, error)

// Result is what a finished job delivers.
type Result[T any] struct {
	Value T
	Err   error
}

type job[T any] struct {
	cancel context.CancelFunc
	done   <-chan Result[T]
}

// Runner owns at most one outstanding job. The zero value is idle and ready
// to use.
type Runner[T any] struct {
	mu      sync.Mutex
	current *job[T]
}

// Start launches fn on a new goroutine. It returns false, and does nothing,
// if a job is already outstanding.
func (r *Runner[T]) Start(fn Func[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result[T], 1)
	r.current = &job[T]{cancel: cancel, done: done}

	go run(ctx, fn, done)
	return true
}

func run[T any](ctx context.Context, fn Func[T], done chan<- Result[T]) {
	res := call(ctx, fn)

	// Nobody is listening any more; drop the result.
	if ctx.Err() != nil {
		return
	}

	select {
	case done <- res:
	default:
		logging.Logger().Error("task result could not be delivered")
	}
}

func call[T any](ctx context.Context, fn Func[T]) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			logging.Logger().Error("task panicked", "panic", p)
			res = Result[T]{Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
	}()
	v, err := fn(ctx)
	return Result[T]{Value: v, Err: err}
}

// Cancel signals the outstanding job to stop and forgets it. It does not
// wait for the goroutine to exit; whatever it produces is discarded.
func (r *Runner[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	r.current.cancel()
	r.current = nil
}

// TryResult returns the result of the outstanding job if it has finished.
// Receiving a result makes the runner idle again.
func (r *Runner[T]) TryResult() (Result[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Result[T]{}, false
	}

	select {
	case res := <-r.current.done:
		r.current.cancel()
		r.current = nil
		return res, true
	default:
		return Result[T]{}, false
	}
}

// Active reports whether a job is outstanding.
func (r *Runner[T]) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}
