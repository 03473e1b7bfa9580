// Package vdtest provides an in-memory vd.Backend for tests.
package vdtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/vdm-cli/internal/vd"
)

type windowState struct {
	desktopID string
	pinned    vd.PlacementKind
}

// Fake is an in-memory backend. Faults are injected per operation name.
type Fake struct {
	mu       sync.Mutex
	kind     vd.Kind
	desktops []vd.Desktop
	current  int
	windows  map[vd.WindowHandle]*windowState
	faults   map[string][]error
	calls    []string
	closed   bool
}

// New creates a fake with count unnamed desktops, current set to the first
func New(count int) *Fake {
	f := &Fake{
		kind:    vd.KindStatic,
		windows: make(map[vd.WindowHandle]*windowState),
		faults:  make(map[string][]error),
	}
	for i := 0; i < count; i++ {
		f.desktops = append(f.desktops, vd.Desktop{ID: newID(), Index: i})
	}
	return f
}

func newID() string {
	return "{" + uuid.NewString() + "}"
}

// SetKind changes the reported backend kind
func (f *Fake) SetKind(k vd.Kind) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kind = k
	return f
}

// AddWindow places hwnd on the desktop with the zero-based index
func (f *Fake) AddWindow(hwnd vd.WindowHandle, index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[hwnd] = &windowState{desktopID: f.desktops[index].ID}
}

// PinApp marks hwnd's app as pinned to all desktops
func (f *Fake) PinApp(hwnd vd.WindowHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[hwnd]; ok {
		w.pinned = vd.PlacementAppPinned
	}
}

// RemoveWindow simulates a window closing
func (f *Fake) RemoveWindow(hwnd vd.WindowHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, hwnd)
}

// Fail queues errs for op; each call to op consumes one
func (f *Fake) Fail(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = append(f.faults[op], errs...)
}

// Calls returns the operations performed so far
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CurrentIndex returns the zero-based current desktop
func (f *Fake) CurrentIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// WindowDesktop returns the zero-based desktop of hwnd, or -1
func (f *Fake) WindowDesktop(hwnd vd.WindowHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[hwnd]
	if !ok {
		return -1
	}
	return f.indexOf(w.desktopID)
}

// Shrink drops desktops beyond count without going through RemoveDesktop
func (f *Fake) Shrink(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.desktops = f.desktops[:count]
	if f.current >= count {
		f.current = count - 1
	}
}

// SetCurrent changes the current desktop without recording a call
func (f *Fake) SetCurrent(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = index
}

// begin records op and returns a queued fault, if any. Caller holds mu.
func (f *Fake) begin(op string) error {
	f.calls = append(f.calls, op)
	if f.closed {
		return &vd.CallError{Op: op, Backend: f.kind, Kind: vd.ErrBackendUnavailable, Err: fmt.Errorf("closed")}
	}
	if errs := f.faults[op]; len(errs) > 0 {
		f.faults[op] = errs[1:]
		return errs[0]
	}
	return nil
}

func (f *Fake) indexOf(id string) int {
	for i, d := range f.desktops {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (f *Fake) lookup(d vd.Desktop) (int, error) {
	i := f.indexOf(d.ID)
	if i < 0 && d.ID == "" && d.Index >= 0 && d.Index < len(f.desktops) {
		i = d.Index
	}
	if i < 0 {
		return -1, &vd.CallError{Op: "lookup", Backend: f.kind, Kind: vd.ErrDesktopNotFound, Err: fmt.Errorf("desktop %d", d.Number())}
	}
	return i, nil
}

func (f *Fake) snapshot(i int) vd.Desktop {
	d := f.desktops[i]
	d.Index = i
	return d
}

func (f *Fake) Kind() vd.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kind
}

func (f *Fake) Desktops() ([]vd.Desktop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("Desktops"); err != nil {
		return nil, err
	}
	out := make([]vd.Desktop, len(f.desktops))
	for i := range f.desktops {
		out[i] = f.snapshot(i)
	}
	return out, nil
}

func (f *Fake) DesktopCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DesktopCount"); err != nil {
		return 0, err
	}
	return len(f.desktops), nil
}

func (f *Fake) CurrentDesktop() (vd.Desktop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CurrentDesktop"); err != nil {
		return vd.Desktop{}, err
	}
	return f.snapshot(f.current), nil
}

func (f *Fake) SwitchTo(d vd.Desktop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("SwitchTo"); err != nil {
		return err
	}
	i, err := f.lookup(d)
	if err != nil {
		return err
	}
	f.current = i
	return nil
}

func (f *Fake) DesktopName(d vd.Desktop) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DesktopName"); err != nil {
		return "", err
	}
	i, err := f.lookup(d)
	if err != nil {
		return "", err
	}
	return f.desktops[i].Name, nil
}

func (f *Fake) SetDesktopName(d vd.Desktop, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("SetDesktopName"); err != nil {
		return err
	}
	i, err := f.lookup(d)
	if err != nil {
		return err
	}
	f.desktops[i].Name = name
	return nil
}

func (f *Fake) CreateDesktop() (vd.Desktop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateDesktop"); err != nil {
		return vd.Desktop{}, err
	}
	f.desktops = append(f.desktops, vd.Desktop{ID: newID()})
	return f.snapshot(len(f.desktops) - 1), nil
}

func (f *Fake) RemoveDesktop(target, fallback vd.Desktop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("RemoveDesktop"); err != nil {
		return err
	}
	ti, err := f.lookup(target)
	if err != nil {
		return err
	}
	fi, err := f.lookup(fallback)
	if err != nil {
		return err
	}
	if ti == fi {
		return &vd.CallError{Op: "RemoveDesktop", Backend: f.kind, Kind: vd.ErrDesktopNotFound, Err: fmt.Errorf("fallback equals target")}
	}

	removedID := f.desktops[ti].ID
	fallbackID := f.desktops[fi].ID
	currentID := f.desktops[f.current].ID
	for _, w := range f.windows {
		if w.desktopID == removedID {
			w.desktopID = fallbackID
		}
	}
	if currentID == removedID {
		currentID = fallbackID
	}
	f.desktops = append(f.desktops[:ti], f.desktops[ti+1:]...)
	f.current = f.indexOf(currentID)
	return nil
}

func (f *Fake) MoveWindow(hwnd vd.WindowHandle, d vd.Desktop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("MoveWindow"); err != nil {
		return err
	}
	w, ok := f.windows[hwnd]
	if !ok {
		return &vd.CallError{Op: "MoveWindow", Backend: f.kind, Kind: vd.ErrWindowNotFound, Err: fmt.Errorf("window %s", hwnd)}
	}
	i, err := f.lookup(d)
	if err != nil {
		return err
	}
	w.desktopID = f.desktops[i].ID
	return nil
}

func (f *Fake) WindowPlacement(hwnd vd.WindowHandle) (vd.Placement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("WindowPlacement"); err != nil {
		return vd.Placement{}, err
	}
	w, ok := f.windows[hwnd]
	if !ok {
		return vd.Placement{}, &vd.CallError{Op: "WindowPlacement", Backend: f.kind, Kind: vd.ErrWindowNotFound, Err: fmt.Errorf("window %s", hwnd)}
	}
	if w.pinned != "" {
		return vd.Placement{Kind: w.pinned}, nil
	}
	return vd.Placement{Kind: vd.PlacementDesktop, Desktop: f.snapshot(f.indexOf(w.desktopID))}, nil
}

func (f *Fake) PinWindow(hwnd vd.WindowHandle) error {
	return f.setPinned("PinWindow", hwnd, vd.PlacementWindowPinned)
}

func (f *Fake) UnpinWindow(hwnd vd.WindowHandle) error {
	return f.setPinned("UnpinWindow", hwnd, "")
}

func (f *Fake) setPinned(op string, hwnd vd.WindowHandle, kind vd.PlacementKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(op); err != nil {
		return err
	}
	w, ok := f.windows[hwnd]
	if !ok {
		return &vd.CallError{Op: op, Backend: f.kind, Kind: vd.ErrWindowNotFound, Err: fmt.Errorf("window %s", hwnd)}
	}
	w.pinned = kind
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Notifying wraps a Fake with push notifications triggered by Notify
type Notifying struct {
	*Fake
	signals chan struct{}
}

// NewNotifying creates a notifying fake with count desktops
func NewNotifying(count int) *Notifying {
	return &Notifying{Fake: New(count), signals: make(chan struct{}, 16)}
}

// Notify delivers one change notification to the subscriber
func (n *Notifying) Notify() {
	n.signals <- struct{}{}
}

func (n *Notifying) Subscribe(ctx context.Context, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.signals:
			fn()
		}
	}
}
