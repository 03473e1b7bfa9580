// Package window lists top-level application windows and wraps the few
// window operations the desktop manager needs.
package window

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/vd"
)

// Window is a top-level window as seen in one enumeration pass.
// Handles are owned by the OS and may be invalid by the time they are used.
type Window struct {
	Handle      vd.WindowHandle `json:"handle"`
	Title       string          `json:"title"`
	ProcessName string          `json:"processName"`
	ProcessID   uint32          `json:"processId"`
	// Index is the one-based position in the enumeration
	Index     int          `json:"index"`
	Placement vd.Placement `json:"placement"`
}

// RawWindow is what the OS reports before desktop placement is attached
type RawWindow struct {
	Handle    vd.WindowHandle
	Title     string
	ProcessID uint32
	ExePath   string
}

// Source reports top-level windows
type Source interface {
	TopLevel() ([]RawWindow, error)
}

// NormalizeTitle converts CRLF and lone CR line breaks to LF
func NormalizeTitle(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ProcessBaseName returns an executable's file name without directory or
// lowercase .exe suffix. Other spellings of the suffix are kept.
func ProcessBaseName(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	base := filepath.Base(path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, ".exe")
}

// Enumerator combines OS windows with their desktop placement
type Enumerator struct {
	source  Source
	backend vd.Backend
}

// NewEnumerator creates an enumerator over source using backend for placement
func NewEnumerator(source Source, backend vd.Backend) *Enumerator {
	return &Enumerator{source: source, backend: backend}
}

// List returns the current windows. Windows that close mid-enumeration are
// dropped; placement failures other than a vanished window leave Placement empty.
func (e *Enumerator) List(ctx context.Context) ([]Window, error) {
	raw, err := e.source.TopLevel()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(raw))
	for _, r := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w := Window{
			Handle:      r.Handle,
			Title:       NormalizeTitle(r.Title),
			ProcessName: ProcessBaseName(r.ExePath),
			ProcessID:   r.ProcessID,
		}

		placement, err := e.backend.WindowPlacement(r.Handle)
		switch {
		case err == nil:
			w.Placement = placement
		case errors.Is(err, vd.ErrWindowNotFound):
			logging.Debug().Stringer("hwnd", r.Handle).Msg("window vanished during enumeration")
			continue
		default:
			logging.Debug().Err(err).Stringer("hwnd", r.Handle).Msg("window placement unavailable")
		}

		w.Index = len(windows) + 1
		windows = append(windows, w)
	}
	return windows, nil
}
