package vd

import "context"

// Backend is the uniform control surface over the virtual desktop shell.
// Exactly one implementation is active per process; see Init.
type Backend interface {
	Kind() Kind

	Desktops() ([]Desktop, error)
	DesktopCount() (int, error)
	CurrentDesktop() (Desktop, error)
	SwitchTo(d Desktop) error

	DesktopName(d Desktop) (string, error)
	SetDesktopName(d Desktop, name string) error
	CreateDesktop() (Desktop, error)
	RemoveDesktop(target, fallback Desktop) error

	MoveWindow(hwnd WindowHandle, d Desktop) error
	WindowPlacement(hwnd WindowHandle) (Placement, error)
	PinWindow(hwnd WindowHandle) error
	UnpinWindow(hwnd WindowHandle) error

	Close() error
}

// Notifier is implemented by backends that push change notifications.
// Subscribe blocks, calling fn after each change, until ctx ends.
type Notifier interface {
	Subscribe(ctx context.Context, fn func()) error
}

// CanNotify reports whether b delivers change notifications
func CanNotify(b Backend) bool {
	_, ok := b.(Notifier)
	return ok
}

type atomicBackend interface {
	Atomically(fn func(Backend) error) error
}

// Atomically runs fn with no other call on b interleaved. On a serialized
// backend fn runs as one job on the worker; fn must use the Backend it is
// given and not b, or it waits on itself.
func Atomically(b Backend, fn func(Backend) error) error {
	if a, ok := b.(atomicBackend); ok {
		return a.Atomically(fn)
	}
	return fn(b)
}

// DesktopsWithCurrent reads the desktop list and the current desktop in one
// atomic step, so the pair always describes the same shell state.
func DesktopsWithCurrent(b Backend) (desktops []Desktop, current Desktop, err error) {
	err = Atomically(b, func(b Backend) error {
		if desktops, err = b.Desktops(); err != nil {
			return err
		}
		current, err = b.CurrentDesktop()
		return err
	})
	return desktops, current, err
}
