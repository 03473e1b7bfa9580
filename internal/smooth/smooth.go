// Package smooth switches desktops with the shell's slide animation.
//
// A direct switch jumps without animation. The shell animates when focus
// moves to a window on another desktop, so the switcher parks an invisible
// proxy window on the target, switches, focuses the proxy and then hands
// focus to the window the user last used there.
package smooth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
)

// Proxy is a throwaway window that carries focus to the target desktop
type Proxy interface {
	Handle() vd.WindowHandle
	Focus() error
	Destroy() error
}

// WindowSystem is the window surface the switcher needs
type WindowSystem interface {
	Foreground() vd.WindowHandle
	SetForeground(hwnd vd.WindowHandle) error
	NewProxy() (Proxy, error)
}

// Options tune timing
type Options struct {
	// Settle is how long the proxy keeps focus before it is handed back
	Settle time.Duration
	// MoveRetryDelay is the wait before the single retry of a failed proxy move
	MoveRetryDelay time.Duration
}

// DefaultOptions returns the standard timing
func DefaultOptions() Options {
	return Options{
		Settle:         125 * time.Millisecond,
		MoveRetryDelay: 100 * time.Millisecond,
	}
}

// Switcher performs animated desktop switches. One switch is in flight at a
// time; a newer request cancels only the older one's focus hand-back.
type Switcher struct {
	backend vd.Backend
	windows WindowSystem
	state   *state.DesktopState
	opts    Options

	mu         sync.Mutex
	generation uint64

	proxyMu sync.Mutex
	proxies map[vd.WindowHandle]bool
}

// New creates a switcher. st records per-desktop focus; it may be shared
// with a watcher.
func New(backend vd.Backend, windows WindowSystem, st *state.DesktopState, opts Options) *Switcher {
	if st == nil {
		st = state.NewDesktopState()
	}
	return &Switcher{
		backend: backend,
		windows: windows,
		state:   st,
		opts:    opts,
		proxies: make(map[vd.WindowHandle]bool),
	}
}

// SwitchTo switches to target. If any animation step fails it falls back to
// a direct switch; the returned error is nil whenever the target was reached.
func (s *Switcher) SwitchTo(ctx context.Context, target vd.Desktop) error {
	proxy, gen, err := s.begin(target)
	if err != nil {
		logging.Warn().Err(err).Int("desktop", target.Number()).Msg("smooth switch failed, switching directly")
		if err := s.backend.SwitchTo(target); err != nil {
			return fmt.Errorf("switch to desktop %d: %w", target.Number(), err)
		}
		return nil
	}

	s.finish(ctx, proxy, gen, target)
	return nil
}

// begin runs the steps that must not overlap with another switch and
// returns the proxy holding focus on the target
func (s *Switcher) begin(target vd.Desktop) (Proxy, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	gen := s.generation

	if current, err := s.backend.CurrentDesktop(); err == nil {
		if fg := s.windows.Foreground(); !s.isProxy(fg) {
			s.state.RememberFocus(current, fg)
		}
	}

	proxy, err := s.windows.NewProxy()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create proxy: %v", vd.ErrAnimationFailed, err)
	}
	s.trackProxy(proxy.Handle(), true)

	if err := s.moveProxy(proxy, target); err != nil {
		s.destroy(proxy)
		return nil, 0, fmt.Errorf("%w: move proxy: %v", vd.ErrAnimationFailed, err)
	}

	if err := s.backend.SwitchTo(target); err != nil {
		s.destroy(proxy)
		return nil, 0, fmt.Errorf("%w: switch: %v", vd.ErrAnimationFailed, err)
	}

	if err := proxy.Focus(); err != nil {
		// Already on the target; only the animation is lost
		logging.Debug().Err(err).Msg("proxy focus failed")
	}
	return proxy, gen, nil
}

// moveProxy moves the proxy, retrying once since a freshly created window
// is sometimes not yet known to the shell
func (s *Switcher) moveProxy(proxy Proxy, target vd.Desktop) error {
	err := s.backend.MoveWindow(proxy.Handle(), target)
	if err == nil {
		return nil
	}
	logging.Debug().Err(err).Msg("proxy move failed, retrying")
	time.Sleep(s.opts.MoveRetryDelay)
	return s.backend.MoveWindow(proxy.Handle(), target)
}

// finish waits for the animation, hands focus back and destroys the proxy.
// A newer switch skips the hand-back but the proxy is always destroyed.
func (s *Switcher) finish(ctx context.Context, proxy Proxy, gen uint64, target vd.Desktop) {
	defer s.destroy(proxy)

	select {
	case <-time.After(s.opts.Settle):
	case <-ctx.Done():
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logging.Debug().Int("desktop", target.Number()).Msg("focus restore superseded")
		return
	}

	hwnd, ok := s.state.LastFocus(target)
	if !ok {
		return
	}
	if err := s.windows.SetForeground(hwnd); err != nil {
		if errors.Is(err, vd.ErrWindowNotFound) {
			s.state.ForgetFocus(target)
		}
		logging.Debug().Err(err).Stringer("hwnd", hwnd).Msg("focus restore failed")
	}
}

func (s *Switcher) isProxy(hwnd vd.WindowHandle) bool {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	return s.proxies[hwnd]
}

func (s *Switcher) trackProxy(hwnd vd.WindowHandle, live bool) {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	if live {
		s.proxies[hwnd] = true
	} else {
		delete(s.proxies, hwnd)
	}
}

func (s *Switcher) destroy(proxy Proxy) {
	defer s.trackProxy(proxy.Handle(), false)
	if err := proxy.Destroy(); err != nil {
		logging.Warn().Err(err).Stringer("hwnd", proxy.Handle()).Msg("failed to destroy proxy window")
	}
}
