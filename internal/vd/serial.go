package vd

import (
	"context"

	"github.com/yourusername/vdm-cli/internal/worker"
)

// Serialize routes every call on b through w so backend calls never overlap.
// Notifier backends stay Notifiers; Subscribe itself runs on the caller's
// goroutine since it blocks for the life of ctx.
func Serialize(w *worker.Worker, b Backend) Backend {
	s := &serialBackend{w: w, b: b}
	if n, ok := b.(Notifier); ok {
		return &serialNotifier{serialBackend: s, n: n}
	}
	return s
}

// OnWorker fills in platform defaults and makes the backend constructors run
// on w, so objects bound to the calling thread are created where they are used.
func OnWorker(w *worker.Worker, opts SelectOptions) SelectOptions {
	opts = opts.withDefaults()
	loadDynamic, newStatic := opts.LoadDynamic, opts.NewStatic

	opts.LoadDynamic = func(path string) (b Backend, err error) {
		doErr := w.Do(context.Background(), func() error {
			b, err = loadDynamic(path)
			return nil
		})
		if doErr != nil {
			return nil, doErr
		}
		return b, err
	}
	opts.NewStatic = func() (b Backend, err error) {
		doErr := w.Do(context.Background(), func() error {
			b, err = newStatic()
			return nil
		})
		if doErr != nil {
			return nil, doErr
		}
		return b, err
	}
	return opts
}

type serialBackend struct {
	w *worker.Worker
	b Backend
}

type serialNotifier struct {
	*serialBackend
	n Notifier
}

func (s *serialNotifier) Subscribe(ctx context.Context, fn func()) error {
	return s.n.Subscribe(ctx, fn)
}

func (s *serialBackend) do(fn func() error) error {
	return s.w.Do(context.Background(), fn)
}

func (s *serialBackend) Atomically(fn func(Backend) error) error {
	return s.do(func() error { return fn(s.b) })
}

func (s *serialBackend) Kind() Kind { return s.b.Kind() }

func (s *serialBackend) Desktops() (ds []Desktop, err error) {
	err = s.do(func() error {
		ds, err = s.b.Desktops()
		return err
	})
	return ds, err
}

func (s *serialBackend) DesktopCount() (n int, err error) {
	err = s.do(func() error {
		n, err = s.b.DesktopCount()
		return err
	})
	return n, err
}

func (s *serialBackend) CurrentDesktop() (d Desktop, err error) {
	err = s.do(func() error {
		d, err = s.b.CurrentDesktop()
		return err
	})
	return d, err
}

func (s *serialBackend) SwitchTo(d Desktop) error {
	return s.do(func() error { return s.b.SwitchTo(d) })
}

func (s *serialBackend) DesktopName(d Desktop) (name string, err error) {
	err = s.do(func() error {
		name, err = s.b.DesktopName(d)
		return err
	})
	return name, err
}

func (s *serialBackend) SetDesktopName(d Desktop, name string) error {
	return s.do(func() error { return s.b.SetDesktopName(d, name) })
}

func (s *serialBackend) CreateDesktop() (d Desktop, err error) {
	err = s.do(func() error {
		d, err = s.b.CreateDesktop()
		return err
	})
	return d, err
}

func (s *serialBackend) RemoveDesktop(target, fallback Desktop) error {
	return s.do(func() error { return s.b.RemoveDesktop(target, fallback) })
}

func (s *serialBackend) MoveWindow(hwnd WindowHandle, d Desktop) error {
	return s.do(func() error { return s.b.MoveWindow(hwnd, d) })
}

func (s *serialBackend) WindowPlacement(hwnd WindowHandle) (p Placement, err error) {
	err = s.do(func() error {
		p, err = s.b.WindowPlacement(hwnd)
		return err
	})
	return p, err
}

func (s *serialBackend) PinWindow(hwnd WindowHandle) error {
	return s.do(func() error { return s.b.PinWindow(hwnd) })
}

func (s *serialBackend) UnpinWindow(hwnd WindowHandle) error {
	return s.do(func() error { return s.b.UnpinWindow(hwnd) })
}

func (s *serialBackend) Close() error {
	return s.do(s.b.Close)
}
