// Package flash stops taskbar flashing.
//
// Sending FLASHW_STOP alone leaves the taskbar button highlighted on some
// shells and can make the window start flashing again once it is moved to
// another desktop. The Stopper briefly hides each window after stopping the
// flash, shows it again without activating it, and then keeps nudging it
// back onto its target desktop while the shell settles.
package flash

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/vd"
)

// Windows is the window-system surface the stopper drives
type Windows interface {
	StopFlashing(hwnd vd.WindowHandle) error
	// Hide hides hwnd and reports whether it was visible beforehand
	Hide(hwnd vd.WindowHandle) (bool, error)
	ShowNoActivate(hwnd vd.WindowHandle) error
	IsVisible(hwnd vd.WindowHandle) bool
}

// Placer moves windows between desktops
type Placer interface {
	MoveWindow(hwnd vd.WindowHandle, d vd.Desktop) error
	WindowPlacement(hwnd vd.WindowHandle) (vd.Placement, error)
}

// Request is one window to stop flashing. A nil Target leaves the window
// wherever the shell puts it.
type Request struct {
	Handle vd.WindowHandle
	Target *vd.Desktop
}

// Options tune the hide and show sequence
type Options struct {
	// Settle is the wait between FLASHW_STOP and hiding the window
	Settle time.Duration
	// HiddenChecks are the waits between checks that the window is hidden
	HiddenChecks []time.Duration
	// ShowGuard is the least time a window stays hidden when the sequence is
	// interrupted before it is shown again
	ShowGuard time.Duration
	// MoveRetries are the waits before each check that the window is still
	// on its target desktop
	MoveRetries []time.Duration
}

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

// DefaultOptions returns the timings used against the real shell
func DefaultOptions() Options {
	return Options{
		Settle:       time.Second,
		HiddenChecks: ms(100, 400, 500, 1000, 3000, 5000, 5000, 5000, 10000, 30000),
		ShowGuard:    time.Second,
		MoveRetries:  ms(0, 25, 25, 50, 400),
	}
}

// Stopper runs the stop sequence for batches of windows
type Stopper struct {
	windows Windows
	placer  Placer
	opts    Options
}

// New creates a stopper. placer may be nil when no request has a target.
func New(windows Windows, placer Placer, opts Options) *Stopper {
	return &Stopper{windows: windows, placer: placer, opts: opts}
}

// Stop handles every request concurrently and waits for all of them.
// Errors from individual windows are joined.
func (s *Stopper) Stop(ctx context.Context, reqs []Request) error {
	if len(reqs) == 0 {
		return nil
	}

	errs := make([]error, len(reqs))
	var wg sync.WaitGroup
	for i, r := range reqs {
		wg.Add(1)
		go func(i int, r Request) {
			defer wg.Done()
			errs[i] = s.stopOne(ctx, r)
		}(i, r)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *Stopper) stopOne(ctx context.Context, r Request) (err error) {
	if r.Target != nil {
		if err := s.ensureOn(r.Handle, *r.Target); err != nil {
			return err
		}
	}

	if err := s.windows.StopFlashing(r.Handle); err != nil {
		return err
	}
	if err := sleep(ctx, s.opts.Settle); err != nil {
		return err
	}

	hiddenAt := time.Now()
	visible, err := s.windows.Hide(r.Handle)
	if err != nil {
		return err
	}
	if !visible {
		// A hidden window has no taskbar button to fix.
		return nil
	}

	shown := false
	defer func() {
		if shown {
			return
		}
		if wait := s.opts.ShowGuard - time.Since(hiddenAt); wait > 0 {
			time.Sleep(wait)
		}
		if showErr := s.windows.ShowNoActivate(r.Handle); showErr != nil {
			err = errors.Join(err, showErr)
		}
	}()

	for _, wait := range s.opts.HiddenChecks {
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		if !s.windows.IsVisible(r.Handle) {
			break
		}
	}

	if err := s.windows.ShowNoActivate(r.Handle); err != nil {
		return err
	}
	shown = true

	if r.Target == nil {
		return nil
	}
	for _, wait := range s.opts.MoveRetries {
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		if err := s.ensureOn(r.Handle, *r.Target); err != nil {
			logging.Debug().Err(err).Stringer("hwnd", r.Handle).Msg("failed to keep window on target desktop")
		}
	}
	return nil
}

// ensureOn moves hwnd to target unless it is already there
func (s *Stopper) ensureOn(hwnd vd.WindowHandle, target vd.Desktop) error {
	p, err := s.placer.WindowPlacement(hwnd)
	if err == nil && p.Kind == vd.PlacementDesktop && vd.SameDesktop(p.Desktop, target) {
		return nil
	}
	return s.placer.MoveWindow(hwnd, target)
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
