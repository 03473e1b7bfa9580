// Package watch keeps the desktop state current and reports what changed.
//
// With a backend that pushes notifications the watcher refreshes on each
// one. Otherwise it polls on a fixed interval. Either way, events are only
// emitted for actual differences between consecutive snapshots.
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
)

// Mode is how the watcher learns about changes
type Mode string

const (
	ModeReactive Mode = "reactive"
	ModePolling  Mode = "polling"
)

// DefaultInterval is the polling period
const DefaultInterval = time.Second

// EventKind classifies a desktop change
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventDestroyed EventKind = "destroyed"
	EventChanged   EventKind = "changed"
	EventRenamed   EventKind = "renamed"
)

// Event is one observed change
type Event struct {
	Kind EventKind `json:"kind"`
	// Desktop is the desktop the event is about: the new, removed, newly
	// current or renamed one
	Desktop vd.Desktop `json:"desktop"`
	// Previous is the formerly current desktop for EventChanged and the
	// desktop that became current for EventDestroyed
	Previous vd.Desktop `json:"previous"`
	Count    int        `json:"count"`
}

// Options configure a Watcher
type Options struct {
	Interval time.Duration
	// Polling forces polling even when the backend can notify
	Polling bool
}

// Watcher refreshes a DesktopState from a backend
type Watcher struct {
	backend vd.Backend
	state   *state.DesktopState
	opts    Options
}

// New creates a watcher
func New(backend vd.Backend, st *state.DesktopState, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Watcher{backend: backend, state: st, opts: opts}
}

// Mode reports how Run will detect changes
func (w *Watcher) Mode() Mode {
	if !w.opts.Polling && vd.CanNotify(w.backend) {
		return ModeReactive
	}
	return ModePolling
}

// Read takes a fresh snapshot from the backend
func (w *Watcher) Read() (state.Snapshot, error) {
	desktops, current, err := vd.DesktopsWithCurrent(w.backend)
	if err != nil {
		return state.Snapshot{}, err
	}
	return state.Snapshot{
		Count:     len(desktops),
		Current:   current,
		Desktops:  desktops,
		UpdatedAt: time.Now(),
	}, nil
}

// Refresh reads the backend, stores the result and returns the differences
func (w *Watcher) Refresh() ([]Event, error) {
	next, err := w.Read()
	if err != nil {
		return nil, err
	}
	prev, changed := w.state.Update(next)
	if !changed {
		return nil, nil
	}
	return Diff(prev, next), nil
}

// Run refreshes until ctx ends, passing each event to emit
func (w *Watcher) Run(ctx context.Context, emit func(Event)) error {
	refresh := func() {
		events, err := w.Refresh()
		if err != nil {
			logging.Warn().Err(err).Msg("desktop refresh failed")
			return
		}
		for _, e := range events {
			logging.Debug().Str("event", string(e.Kind)).Int("desktop", e.Desktop.Number()).Msg("desktop event")
			emit(e)
		}
	}

	refresh()

	if w.Mode() == ModeReactive {
		logging.Info().Str("mode", string(ModeReactive)).Msg("watching desktops")
		err := w.backend.(vd.Notifier).Subscribe(ctx, refresh)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("desktop notifications failed, polling instead")
	}

	logging.Info().Str("mode", string(ModePolling)).Dur("interval", w.opts.Interval).Msg("watching desktops")
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}

// Diff lists the changes from prev to next. An unknown prev yields nothing.
func Diff(prev, next state.Snapshot) []Event {
	if !prev.Known() {
		return nil
	}

	var events []Event

	switch {
	case next.Count > prev.Count:
		for i := prev.Count; i < next.Count; i++ {
			events = append(events, Event{Kind: EventCreated, Desktop: desktopAt(next, i), Count: next.Count})
		}
	case next.Count < prev.Count:
		for _, d := range removed(prev, next) {
			events = append(events, Event{Kind: EventDestroyed, Desktop: d, Previous: next.Current, Count: next.Count})
		}
	}

	if !vd.SameDesktop(prev.Current, next.Current) || prev.Current.Index != next.Current.Index {
		events = append(events, Event{Kind: EventChanged, Desktop: next.Current, Previous: prev.Current, Count: next.Count})
	}

	for _, d := range state.RenamedDesktops(prev, next) {
		events = append(events, Event{Kind: EventRenamed, Desktop: d, Count: next.Count})
	}

	return events
}

func desktopAt(s state.Snapshot, i int) vd.Desktop {
	if i < len(s.Desktops) {
		return s.Desktops[i]
	}
	return vd.Desktop{Index: i}
}

// removed finds desktops in prev missing from next, falling back to the
// trailing indices when identifiers are unavailable
func removed(prev, next state.Snapshot) []vd.Desktop {
	gone := prev.Count - next.Count
	if len(prev.Desktops) == prev.Count && len(next.Desktops) == next.Count {
		present := make(map[string]bool, len(next.Desktops))
		for _, d := range next.Desktops {
			present[vd.NormalizeID(d.ID)] = true
		}
		var out []vd.Desktop
		for _, d := range prev.Desktops {
			if !present[vd.NormalizeID(d.ID)] {
				out = append(out, d)
			}
		}
		if len(out) == gone {
			return out
		}
	}

	out := make([]vd.Desktop, 0, gone)
	for i := next.Count; i < prev.Count; i++ {
		out = append(out, desktopAt(prev, i))
	}
	return out
}
