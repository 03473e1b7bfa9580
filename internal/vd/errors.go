package vd

import (
	"errors"
	"fmt"
)

// Error kinds. Classify with errors.Is.
var (
	// ErrBackendUnavailable is transient: the shell is restarting or not ready
	ErrBackendUnavailable = errors.New("virtual desktop backend unavailable")
	ErrDesktopNotFound    = errors.New("desktop not found")
	ErrWindowNotFound     = errors.New("window not found")
	// ErrOperationFailed is a failure of one call; the backend stays usable
	ErrOperationFailed = errors.New("backend operation failed")
	// ErrAnimationFailed is cosmetic; callers fall back to a plain switch
	ErrAnimationFailed = errors.New("smooth switch animation failed")
	// ErrNoBackendFound is fatal at startup
	ErrNoBackendFound = errors.New("no virtual desktop backend found")
	ErrUnsupported    = errors.New("operation not supported by this backend")
)

// CallError records a failed backend operation
type CallError struct {
	Op      string
	Backend Kind
	Kind    error
	Err     error
}

func (e *CallError) Error() string {
	prefix := e.Op
	if e.Backend != "" {
		prefix = fmt.Sprintf("%s backend: %s", e.Backend, e.Op)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", prefix, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", prefix, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause
func (e *CallError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func callErr(backend Kind, op string, kind, err error) error {
	return &CallError{Op: op, Backend: backend, Kind: kind, Err: err}
}

// IsRecoverable reports whether a batch should skip the item and keep going
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrDesktopNotFound) ||
		errors.Is(err, ErrWindowNotFound) ||
		errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrOperationFailed) ||
		errors.Is(err, ErrUnsupported)
}
