package smooth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/vd/vdtest"
)

type fakeProxy struct {
	w         *fakeWindows
	hwnd      vd.WindowHandle
	destroyed bool
}

func (p *fakeProxy) Handle() vd.WindowHandle { return p.hwnd }

func (p *fakeProxy) Focus() error {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	p.w.foreground = p.hwnd
	p.w.focused = append(p.w.focused, p.hwnd)
	return nil
}

func (p *fakeProxy) Destroy() error {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	p.destroyed = true
	p.w.backend.RemoveWindow(p.hwnd)
	return nil
}

type fakeWindows struct {
	mu         sync.Mutex
	backend    *vdtest.Fake
	foreground vd.WindowHandle
	next       vd.WindowHandle
	proxies    []*fakeProxy
	focused    []vd.WindowHandle
	restored   []vd.WindowHandle
	proxyErr   error
	created    chan struct{}
}

func newFakeWindows(b *vdtest.Fake) *fakeWindows {
	return &fakeWindows{backend: b, next: 0x9000, created: make(chan struct{}, 8)}
}

func (w *fakeWindows) Foreground() vd.WindowHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.foreground
}

func (w *fakeWindows) SetForeground(hwnd vd.WindowHandle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.foreground = hwnd
	w.restored = append(w.restored, hwnd)
	return nil
}

func (w *fakeWindows) NewProxy() (Proxy, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.proxyErr != nil {
		return nil, w.proxyErr
	}
	w.next++
	p := &fakeProxy{w: w, hwnd: w.next}
	w.backend.AddWindow(p.hwnd, w.backend.CurrentIndex())
	w.proxies = append(w.proxies, p)
	w.created <- struct{}{}
	return p, nil
}

func (w *fakeWindows) allDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.proxies {
		if !p.destroyed {
			return false
		}
	}
	return true
}

func quick() Options {
	return Options{Settle: 5 * time.Millisecond, MoveRetryDelay: time.Millisecond}
}

func desktop(t *testing.T, b *vdtest.Fake, index int) vd.Desktop {
	t.Helper()
	ds, err := b.Desktops()
	if err != nil {
		t.Fatalf("Desktops() error = %v", err)
	}
	return ds[index]
}

// === Smooth Switch Tests ===

func TestSwitchToAnimates(t *testing.T) {
	b := vdtest.New(3)
	w := newFakeWindows(b)
	w.foreground = 0x10
	st := state.NewDesktopState()
	st.RememberFocus(desktop(t, b, 2), 0x20)

	s := New(b, w, st, quick())
	if err := s.SwitchTo(context.Background(), desktop(t, b, 2)); err != nil {
		t.Fatalf("SwitchTo() error = %v", err)
	}

	if got := b.CurrentIndex(); got != 2 {
		t.Errorf("current desktop = %d, want 2", got)
	}
	if len(w.focused) != 1 {
		t.Errorf("proxy focused %d times, want 1", len(w.focused))
	}
	if len(w.restored) != 1 || w.restored[0] != 0x20 {
		t.Errorf("restored focus to %v, want [0x20]", w.restored)
	}
	if !w.allDestroyed() {
		t.Error("proxy window not destroyed")
	}

	if h, ok := st.LastFocus(desktop(t, b, 0)); !ok || h != 0x10 {
		t.Errorf("origin focus = %v, %v; want 0x10 remembered", h, ok)
	}
}

func TestSwitchToFallsBack(t *testing.T) {
	moveErr := &vd.CallError{Op: "MoveWindow", Kind: vd.ErrWindowNotFound}

	tests := []struct {
		name   string
		setup  func(b *vdtest.Fake, w *fakeWindows)
		proxy  bool
		moveOK bool
	}{
		{
			name:  "proxy creation fails",
			setup: func(b *vdtest.Fake, w *fakeWindows) { w.proxyErr = errors.New("no class") },
		},
		{
			name:  "proxy move fails twice",
			setup: func(b *vdtest.Fake, w *fakeWindows) { b.Fail("MoveWindow", moveErr, moveErr) },
			proxy: true,
		},
		{
			name:   "proxy move fails once then retries",
			setup:  func(b *vdtest.Fake, w *fakeWindows) { b.Fail("MoveWindow", moveErr) },
			proxy:  true,
			moveOK: true,
		},
		{
			name:  "animated switch fails",
			setup: func(b *vdtest.Fake, w *fakeWindows) { b.Fail("SwitchTo", errors.New("busy")) },
			proxy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := vdtest.New(3)
			w := newFakeWindows(b)
			tt.setup(b, w)

			s := New(b, w, nil, quick())
			if err := s.SwitchTo(context.Background(), desktop(t, b, 1)); err != nil {
				t.Fatalf("SwitchTo() error = %v", err)
			}
			if got := b.CurrentIndex(); got != 1 {
				t.Errorf("current desktop = %d, want 1", got)
			}
			if tt.proxy && !w.allDestroyed() {
				t.Error("proxy leaked")
			}
			if got := len(w.focused) == 1; got != tt.moveOK {
				t.Errorf("animated = %v, want %v", got, tt.moveOK)
			}
		})
	}
}

func TestSwitchToDirectFailure(t *testing.T) {
	b := vdtest.New(2)
	w := newFakeWindows(b)
	w.proxyErr = errors.New("no class")
	b.Fail("SwitchTo", &vd.CallError{Op: "SwitchTo", Kind: vd.ErrBackendUnavailable})

	err := New(b, w, nil, quick()).SwitchTo(context.Background(), desktop(t, b, 1))
	if !errors.Is(err, vd.ErrBackendUnavailable) {
		t.Errorf("SwitchTo() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestSupersededSwitchSkipsRestore(t *testing.T) {
	b := vdtest.New(3)
	w := newFakeWindows(b)
	st := state.NewDesktopState()
	st.RememberFocus(desktop(t, b, 1), 0x100)
	st.RememberFocus(desktop(t, b, 2), 0x200)

	s := New(b, w, st, Options{Settle: 60 * time.Millisecond, MoveRetryDelay: time.Millisecond})

	first := desktop(t, b, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SwitchTo(context.Background(), first)
	}()
	<-w.created

	if err := s.SwitchTo(context.Background(), desktop(t, b, 2)); err != nil {
		t.Fatalf("second SwitchTo() error = %v", err)
	}
	wg.Wait()

	if got := b.CurrentIndex(); got != 2 {
		t.Errorf("current desktop = %d, want 2", got)
	}
	if len(w.restored) != 1 || w.restored[0] != 0x200 {
		t.Errorf("restored %v, want only [0x200]", w.restored)
	}
	if !w.allDestroyed() {
		t.Error("a proxy was not destroyed")
	}
}

func TestProxyNotRememberedAsFocus(t *testing.T) {
	b := vdtest.New(3)
	w := newFakeWindows(b)
	st := state.NewDesktopState()
	s := New(b, w, st, Options{Settle: 40 * time.Millisecond, MoveRetryDelay: time.Millisecond})

	first := desktop(t, b, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SwitchTo(context.Background(), first)
	}()
	<-w.created
	// The first proxy holds focus on desktop 1 now
	s.SwitchTo(context.Background(), desktop(t, b, 2))
	wg.Wait()

	if h, ok := st.LastFocus(desktop(t, b, 1)); ok {
		t.Errorf("proxy %v remembered as desktop focus", h)
	}
}
