package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/vd/vdtest"
	"github.com/yourusername/vdm-cli/internal/worker"
)

func snap(current int, ids ...string) state.Snapshot {
	s := state.Snapshot{Count: len(ids)}
	for i, id := range ids {
		s.Desktops = append(s.Desktops, vd.Desktop{ID: id, Index: i})
	}
	s.Current = s.Desktops[current]
	return s
}

func kinds(events []Event) []EventKind {
	var out []EventKind
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

// === Diff Tests ===

func TestDiff(t *testing.T) {
	named := snap(0, "a", "b")
	named.Desktops[1].Name = "Mail"

	tests := []struct {
		name string
		prev state.Snapshot
		next state.Snapshot
		want []EventKind
	}{
		{"unknown previous", state.Snapshot{}, snap(0, "a"), nil},
		{"no change", snap(0, "a", "b"), snap(0, "a", "b"), nil},
		{"switch", snap(0, "a", "b"), snap(1, "a", "b"), []EventKind{EventChanged}},
		{"create", snap(0, "a"), snap(0, "a", "b"), []EventKind{EventCreated}},
		{"create two", snap(0, "a"), snap(0, "a", "b", "c"), []EventKind{EventCreated, EventCreated}},
		{"destroy other", snap(0, "a", "b"), snap(0, "a"), []EventKind{EventDestroyed}},
		{"destroy current", snap(1, "a", "b"), snap(0, "a"), []EventKind{EventDestroyed, EventChanged}},
		{"rename", snap(0, "a", "b"), named, []EventKind{EventRenamed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Diff(tt.prev, tt.next))
			if len(got) != len(tt.want) {
				t.Fatalf("Diff() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Diff()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiffDestroyedIdentifiesDesktop(t *testing.T) {
	events := Diff(snap(2, "a", "b", "c"), snap(1, "a", "c"))
	if len(events) == 0 || events[0].Kind != EventDestroyed {
		t.Fatalf("Diff() = %+v, want destroyed first", events)
	}
	if events[0].Desktop.ID != "b" {
		t.Errorf("destroyed %q, want b", events[0].Desktop.ID)
	}
	if events[0].Previous.ID != "c" {
		t.Errorf("fallback %q, want c", events[0].Previous.ID)
	}
}

// === Watcher Tests ===

type collector struct {
	mu     sync.Mutex
	events []Event
	signal chan struct{}
}

func newCollector() *collector {
	return &collector{signal: make(chan struct{}, 32)}
}

func (c *collector) emit(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collector) wait(t *testing.T) Event {
	t.Helper()
	select {
	case <-c.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestWatcherMode(t *testing.T) {
	st := state.NewDesktopState()
	if got := New(vdtest.New(2), st, Options{}).Mode(); got != ModePolling {
		t.Errorf("plain backend mode = %s, want polling", got)
	}
	if got := New(vdtest.NewNotifying(2), st, Options{}).Mode(); got != ModeReactive {
		t.Errorf("notifying backend mode = %s, want reactive", got)
	}
	if got := New(vdtest.NewNotifying(2), st, Options{Polling: true}).Mode(); got != ModePolling {
		t.Errorf("forced mode = %s, want polling", got)
	}
}

func TestWatcherPollingEmitsOnlyOnChange(t *testing.T) {
	b := vdtest.New(3)
	st := state.NewDesktopState()
	w := New(b, st, Options{Interval: 5 * time.Millisecond})
	c := newCollector()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, c.emit) }()

	// Several ticks with nothing changing
	time.Sleep(30 * time.Millisecond)
	if n := c.count(); n != 0 {
		t.Fatalf("emitted %d events without a change", n)
	}
	if n := st.Snapshot().Count; n != 3 {
		t.Errorf("state count = %d, want 3", n)
	}

	b.SetCurrent(2)
	e := c.wait(t)
	if e.Kind != EventChanged || e.Desktop.Index != 2 || e.Previous.Index != 0 {
		t.Errorf("event = %+v, want changed 0 -> 2", e)
	}

	b.CreateDesktop()
	e = c.wait(t)
	if e.Kind != EventCreated || e.Count != 4 {
		t.Errorf("event = %+v, want created with count 4", e)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestWatcherReactive(t *testing.T) {
	b := vdtest.NewNotifying(2)
	st := state.NewDesktopState()
	w := New(b, st, Options{Interval: time.Hour})
	c := newCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, c.emit)

	// Wait for the initial refresh before changing anything
	deadline := time.Now().Add(2 * time.Second)
	for st.Snapshot().Count == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	b.SetCurrent(1)
	b.Notify()
	e := c.wait(t)
	if e.Kind != EventChanged || e.Desktop.Index != 1 {
		t.Errorf("event = %+v, want changed to 1", e)
	}

	b.Notify()
	time.Sleep(20 * time.Millisecond)
	if n := c.count(); n != 1 {
		t.Errorf("emitted %d events, want 1 (notification without change is silent)", n)
	}
}

func TestRefreshError(t *testing.T) {
	b := vdtest.New(2)
	b.Fail("Desktops", &vd.CallError{Op: "Desktops", Kind: vd.ErrBackendUnavailable})
	w := New(b, state.NewDesktopState(), Options{})
	if _, err := w.Refresh(); !errors.Is(err, vd.ErrBackendUnavailable) {
		t.Errorf("Refresh() error = %v, want ErrBackendUnavailable", err)
	}
}

// pausingBackend blocks inside Desktops until released
type pausingBackend struct {
	*vdtest.Fake
	entered chan struct{}
	release chan struct{}
}

func (p *pausingBackend) Desktops() ([]vd.Desktop, error) {
	ds, err := p.Fake.Desktops()
	p.entered <- struct{}{}
	<-p.release
	return ds, err
}

func TestReadIsAtomicOnSerializedBackend(t *testing.T) {
	w, err := worker.New("watch-test", nil, nil)
	if err != nil {
		t.Fatalf("worker.New() error = %v", err)
	}
	defer w.Close()

	fake := vdtest.New(3)
	fake.SetCurrent(2)
	ds := mustDesktops(t, fake)
	pb := &pausingBackend{Fake: fake, entered: make(chan struct{}, 1), release: make(chan struct{})}
	b := vd.Serialize(w, pb)
	watcher := New(b, state.NewDesktopState(), Options{Polling: true})

	type result struct {
		snap state.Snapshot
		err  error
	}
	read := make(chan result, 1)
	go func() {
		s, err := watcher.Read()
		read <- result{s, err}
	}()
	<-pb.entered

	// Creating and switching between the two reads would pair a
	// three-desktop list with the fourth desktop as current.
	changed := make(chan struct{})
	go func() {
		defer close(changed)
		if d, err := b.CreateDesktop(); err == nil {
			_ = b.SwitchTo(d)
		}
	}()

	select {
	case <-changed:
		t.Fatal("backend call interleaved with an in-progress snapshot read")
	case <-time.After(20 * time.Millisecond):
	}
	close(pb.release)

	r := <-read
	<-changed
	if r.err != nil {
		t.Fatalf("Read() error = %v", r.err)
	}
	if r.snap.Count != 3 || r.snap.Current.Index != 2 {
		t.Errorf("snapshot = %d desktops, current %d; want 3 and 2", r.snap.Count, r.snap.Current.Index)
	}
	if r.snap.Current.ID != ds[2].ID {
		t.Errorf("current %s is not the listed desktop %s", r.snap.Current.ID, ds[2].ID)
	}
	if got := fake.CurrentIndex(); got != 3 {
		t.Errorf("after the change current = %d, want 3", got)
	}
}

func mustDesktops(t *testing.T, f *vdtest.Fake) []vd.Desktop {
	t.Helper()
	ds, err := f.Desktops()
	if err != nil {
		t.Fatalf("Desktops() error = %v", err)
	}
	return ds
}
