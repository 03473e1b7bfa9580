// Package worker runs functions on a single locked OS thread.
//
// The desktop shell's COM objects and window handles are tied to the thread
// that created them, so every backend call and window mutation goes through
// one Worker. A read submitted while a mutation runs waits behind it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/yourusername/vdm-cli/internal/logging"
)

// ErrClosed is returned by Do after Close
var ErrClosed = errors.New("worker closed")

type job struct {
	fn     func() error
	result chan error
}

// Worker executes submitted jobs one at a time on a dedicated thread
type Worker struct {
	name      string
	jobs      chan job
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
}

// New starts a worker. setup runs first on the worker thread and teardown
// runs on it after Close; either may be nil.
func New(name string, setup func() error, teardown func()) (*Worker, error) {
	w := &Worker{
		name:   name,
		jobs:   make(chan job),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	started := make(chan error, 1)
	go w.loop(setup, teardown, started)

	if err := <-started; err != nil {
		return nil, fmt.Errorf("worker %s setup: %w", name, err)
	}
	return w, nil
}

func (w *Worker) loop(setup func() error, teardown func(), started chan<- error) {
	defer close(w.exited)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if setup != nil {
		if err := setup(); err != nil {
			started <- err
			return
		}
	}
	started <- nil

	logging.Debug().Str("worker", w.name).Msg("worker started")

	for {
		select {
		case j := <-w.jobs:
			j.result <- w.run(j.fn)
		case <-w.done:
			if teardown != nil {
				teardown()
			}
			logging.Debug().Str("worker", w.name).Msg("worker stopped")
			return
		}
	}
}

func (w *Worker) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %s: panic: %v", w.name, r)
			logging.Error().Str("worker", w.name).Interface("panic", r).Msg("job panicked")
		}
	}()
	return fn()
}

// Do runs fn on the worker thread and waits for it to finish.
// If ctx ends first, Do returns ctx.Err() and fn still completes in the background.
func (w *Worker) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, result: make(chan error, 1)}

	select {
	case w.jobs <- j:
	case <-w.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after the job in progress, if any, and waits for teardown
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.done) })
	<-w.exited
}
