package filter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/vdm-cli/internal/flash"
	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/window"
)

// Flasher stops taskbar flashing for a batch of windows
type Flasher interface {
	Stop(ctx context.Context, reqs []flash.Request) error
}

// ApplyOptions control a batch
type ApplyOptions struct {
	// StopFlashing stops flashing on every handled window, not only those whose rule asks
	StopFlashing bool
}

// Failure is one window the batch could not handle
type Failure struct {
	Handle vd.WindowHandle `json:"handle"`
	Title  string          `json:"title"`
	Action Action          `json:"action"`
	Err    error           `json:"-"`
	Error  string          `json:"error"`
	// Recoverable is false when the failure points at the backend or the
	// batch rather than this one window
	Recoverable bool `json:"recoverable"`
}

// Summary reports a batch outcome
type Summary struct {
	RunID    string    `json:"runId"`
	Moved    int       `json:"moved"`
	Pinned   int       `json:"pinned"`
	Unpinned int       `json:"unpinned"`
	Skipped  int       `json:"skipped"`
	Failures []Failure `json:"failures,omitempty"`
}

// Succeeded counts windows that were changed or needed no change
func (s Summary) Succeeded() int {
	return s.Moved + s.Pinned + s.Unpinned + s.Skipped
}

// Failed counts windows that could not be handled
func (s Summary) Failed() int {
	return len(s.Failures)
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d failed (moved %d, pinned %d, unpinned %d, skipped %d)",
		s.Succeeded(), s.Failed(), s.Moved, s.Pinned, s.Unpinned, s.Skipped)
}

// Applier carries out decisions against a backend
type Applier struct {
	backend vd.Backend
	flasher Flasher
}

// NewApplier creates an applier. flasher may be nil.
func NewApplier(backend vd.Backend, flasher Flasher) *Applier {
	return &Applier{backend: backend, flasher: flasher}
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeMoved
	outcomePinned
	outcomeUnpinned
)

// Apply handles each decision independently. A failure is recorded and the
// batch continues; nothing is rolled back. Targets are resolved against a
// desktop list read at the start of the batch.
func (a *Applier) Apply(ctx context.Context, decisions []Decision, opts ApplyOptions) Summary {
	summary := Summary{RunID: uuid.NewString()}
	log := logging.Logger.With().Str("run", summary.RunID).Logger()

	if len(decisions) == 0 {
		return summary
	}

	desktops, listErr := a.backend.Desktops()
	if listErr != nil {
		log.Warn().Err(listErr).Msg("could not list desktops for filter targets")
	}

	var flashing []flash.Request
	for _, d := range decisions {
		if err := ctx.Err(); err != nil {
			summary.Failures = append(summary.Failures, failure(d, err))
			continue
		}

		result, target, err := a.applyOne(d, desktops, listErr)
		if err != nil {
			event := log.Error()
			if vd.IsRecoverable(err) {
				event = log.Warn()
			}
			event.Err(err).
				Stringer("hwnd", d.Window.Handle).
				Str("title", d.Window.Title).
				Str("action", string(d.Action)).
				Int("rule", d.RuleIndex+1).
				Msg("failed to apply filter")
			summary.Failures = append(summary.Failures, failure(d, err))
			continue
		}

		switch result {
		case outcomeMoved:
			summary.Moved++
		case outcomePinned:
			summary.Pinned++
		case outcomeUnpinned:
			summary.Unpinned++
		default:
			summary.Skipped++
		}

		if d.StopFlashing || opts.StopFlashing {
			flashing = append(flashing, flash.Request{Handle: d.Window.Handle, Target: target})
		}
	}

	if len(flashing) > 0 && a.flasher != nil {
		if err := a.flasher.Stop(ctx, flashing); err != nil {
			log.Error().Err(err).Int("windows", len(flashing)).Msg("failed to stop windows from flashing")
		}
	}

	log.Info().
		Int("succeeded", summary.Succeeded()).
		Int("failed", summary.Failed()).
		Int("moved", summary.Moved).
		Msg("applied filters")
	return summary
}

func failure(d Decision, err error) Failure {
	return Failure{
		Handle: d.Window.Handle,
		Title:  d.Window.Title,
		Action: d.Action,
		Err:    err,
		Error:  err.Error(),

		Recoverable: vd.IsRecoverable(err),
	}
}

// applyOne returns the desktop the window should stay on when a move rule
// resolved one
func (a *Applier) applyOne(d Decision, desktops []vd.Desktop, listErr error) (outcome, *vd.Desktop, error) {
	w := d.Window
	if w.Placement.Kind == vd.PlacementAppPinned {
		return outcomeSkipped, nil, nil
	}

	switch d.Action {
	case ActionNothing, ActionDisabled:
		return outcomeSkipped, nil, nil

	case ActionPin:
		if w.Placement.Kind == vd.PlacementWindowPinned {
			return outcomeSkipped, nil, nil
		}
		return outcomePinned, nil, a.backend.PinWindow(w.Handle)

	case ActionUnpin:
		if w.Placement.Kind != vd.PlacementWindowPinned {
			return outcomeSkipped, nil, nil
		}
		return outcomeUnpinned, nil, a.backend.UnpinWindow(w.Handle)

	case ActionMove, ActionUnpinAndMove:
		if w.Placement.Kind == vd.PlacementWindowPinned && d.Action == ActionMove {
			return outcomeSkipped, nil, nil
		}
		if listErr != nil {
			return outcomeSkipped, nil, listErr
		}
		target, err := d.Target.Resolve(desktops)
		if err != nil {
			return outcomeSkipped, nil, err
		}

		if w.Placement.Kind == vd.PlacementWindowPinned {
			if err := a.backend.UnpinWindow(w.Handle); err != nil {
				return outcomeSkipped, nil, err
			}
		} else if w.Placement.Kind == vd.PlacementDesktop && vd.SameDesktop(w.Placement.Desktop, target) {
			return outcomeSkipped, &target, nil
		}

		if err := a.backend.MoveWindow(w.Handle, target); err != nil {
			return outcomeSkipped, nil, err
		}
		logging.Debug().Stringer("hwnd", w.Handle).Str("desktop", target.Label()).Msg("moved window")
		return outcomeMoved, &target, nil
	}

	return outcomeSkipped, nil, errors.New("unknown action " + string(d.Action))
}

// StopAllFlashing stops flashing on every window. Windows on a desktop are
// kept on that desktop.
func (a *Applier) StopAllFlashing(ctx context.Context, windows []window.Window) error {
	if a.flasher == nil {
		return vd.ErrUnsupported
	}
	reqs := make([]flash.Request, 0, len(windows))
	for _, w := range windows {
		r := flash.Request{Handle: w.Handle}
		if w.Placement.Kind == vd.PlacementDesktop {
			desktop := w.Placement.Desktop
			r.Target = &desktop
		}
		reqs = append(reqs, r)
	}
	logging.Info().Int("windows", len(reqs)).Msg("stopping all windows from flashing")
	return a.flasher.Stop(ctx, reqs)
}
