package filter

import (
	"context"
	"sync"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/window"
)

// Lister returns the windows to evaluate
type Lister interface {
	List(ctx context.Context) ([]window.Window, error)
}

type request struct {
	apply   bool
	rules   []Rule
	opts    ApplyOptions
	stopAll bool
}

// Runner applies rule lists in the background. Requests that arrive while a
// batch runs collapse into one: only the latest rule list is applied next,
// and a queued stop-all-flashing request survives being superseded.
type Runner struct {
	lister  Lister
	applier *Applier
	onDone  func(Summary)

	mu      sync.Mutex
	pending *request
	wake    chan struct{}
}

// NewRunner creates a runner. onDone, if set, receives each batch summary.
func NewRunner(lister Lister, applier *Applier, onDone func(Summary)) *Runner {
	return &Runner{
		lister:  lister,
		applier: applier,
		onDone:  onDone,
		wake:    make(chan struct{}, 1),
	}
}

// Submit queues rules for application, replacing any request not yet started.
// The rule slice is copied so later edits by the caller are not seen.
func (r *Runner) Submit(rules []Rule, opts ApplyOptions) {
	snapshot := append([]Rule(nil), rules...)

	r.mu.Lock()
	next := &request{apply: true, rules: snapshot, opts: opts}
	if r.pending != nil {
		logging.Debug().Msg("superseding queued filter request")
		next.stopAll = r.pending.stopAll
	}
	r.pending = next
	r.mu.Unlock()

	r.notify()
}

// SubmitStopFlashing queues a stop of all taskbar flashing. It merges with a
// queued rule list rather than replacing it.
func (r *Runner) SubmitStopFlashing() {
	r.mu.Lock()
	if r.pending == nil {
		r.pending = &request{}
	}
	r.pending.stopAll = true
	r.mu.Unlock()

	r.notify()
}

func (r *Runner) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) take() *request {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := r.pending
	r.pending = nil
	return req
}

// Run processes requests until ctx ends
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}

		req := r.take()
		if req == nil {
			continue
		}
		r.process(ctx, req)
	}
}

func (r *Runner) process(ctx context.Context, req *request) {
	if req.apply {
		summary, err := r.RunOnce(ctx, req.rules, req.opts)
		if err != nil {
			logging.Error().Err(err).Msg("failed to list windows for filters")
		} else if r.onDone != nil {
			r.onDone(summary)
		}
	}
	if req.stopAll {
		if err := r.StopAllFlashing(ctx); err != nil {
			logging.Error().Err(err).Msg("failed to stop all windows from flashing")
		}
	}
}

// StopAllFlashing lists windows and stops flashing on every one of them
func (r *Runner) StopAllFlashing(ctx context.Context) error {
	windows, err := r.lister.List(ctx)
	if err != nil {
		return err
	}
	return r.applier.StopAllFlashing(ctx, windows)
}

// RunOnce lists windows, evaluates rules and applies the decisions
func (r *Runner) RunOnce(ctx context.Context, rules []Rule, opts ApplyOptions) (Summary, error) {
	windows, err := r.lister.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return r.applier.Apply(ctx, Evaluate(windows, rules), opts), nil
}
