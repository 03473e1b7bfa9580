package vd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yourusername/vdm-cli/internal/logging"
)

// LibraryName is the external module that enables the dynamic backend
const LibraryName = "VirtualDesktopAccessor.dll"

// SelectOptions controls backend selection. Nil funcs fall back to platform defaults.
type SelectOptions struct {
	// LibraryPaths are probed before the default candidates
	LibraryPaths []string
	// Exists reports whether a candidate path holds the library
	Exists func(path string) bool
	// LoadDynamic loads the library at path
	LoadDynamic func(path string) (Backend, error)
	// NewStatic creates the compiled-in backend
	NewStatic func() (Backend, error)
	// Executable returns the running binary's path
	Executable func() (string, error)
}

// Selection reports the outcome of backend selection
type Selection struct {
	Kind        Kind     `json:"kind"`
	LibraryPath string   `json:"libraryPath,omitempty"`
	Probed      []string `json:"probed"`
	LoadError   string   `json:"loadError,omitempty"`
}

func (o SelectOptions) withDefaults() SelectOptions {
	def := platformOptions()
	if o.Exists == nil {
		o.Exists = def.Exists
	}
	if o.LoadDynamic == nil {
		o.LoadDynamic = def.LoadDynamic
	}
	if o.NewStatic == nil {
		o.NewStatic = def.NewStatic
	}
	if o.Executable == nil {
		o.Executable = os.Executable
	}
	return o
}

// Candidates lists library paths in probe order: explicit paths, the
// executable's directory, then the bare name for the standard search path.
func (o SelectOptions) Candidates() []string {
	var paths []string
	paths = append(paths, o.LibraryPaths...)
	if o.Executable != nil {
		if exe, err := o.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(exe), LibraryName))
		}
	}
	return append(paths, LibraryName)
}

// Select probes for the external library and returns the dynamic backend if
// it loads, otherwise the static backend. A library that is present but fails
// to load is not fatal while the static backend is available.
func Select(opts SelectOptions) (Backend, Selection, error) {
	opts = opts.withDefaults()
	sel := Selection{}

	var loadErr error
	for _, path := range opts.Candidates() {
		sel.Probed = append(sel.Probed, path)
		if !opts.Exists(path) {
			continue
		}

		b, err := opts.LoadDynamic(path)
		if err != nil {
			loadErr = err
			logging.Warn().Err(err).Str("path", path).Msg("failed to load desktop library")
			continue
		}

		sel.Kind = KindDynamic
		sel.LibraryPath = path
		logging.Info().Str("backend", string(sel.Kind)).Str("path", path).Msg("selected backend")
		return b, sel, nil
	}
	if loadErr != nil {
		sel.LoadError = loadErr.Error()
	}

	b, err := opts.NewStatic()
	if err != nil {
		if loadErr != nil {
			err = errors.Join(err, loadErr)
		}
		return nil, sel, fmt.Errorf("%w: %v", ErrNoBackendFound, err)
	}

	sel.Kind = KindStatic
	logging.Info().Str("backend", string(sel.Kind)).Strs("probed", sel.Probed).Msg("selected backend")
	return b, sel, nil
}

// handle is the process-wide backend, set once
type handle struct {
	once sync.Once

	mu        sync.RWMutex
	backend   Backend
	selection Selection
	err       error
}

var active handle

func (h *handle) init(opts SelectOptions) (Backend, error) {
	h.once.Do(func() {
		b, sel, err := Select(opts)
		h.mu.Lock()
		h.backend, h.selection, h.err = b, sel, err
		h.mu.Unlock()
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.backend, h.err
}

func (h *handle) selected() Selection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.selection
}

// Init selects the process-wide backend. Only the first call selects;
// later calls return the same result whatever their options.
func Init(opts SelectOptions) (Backend, error) {
	return active.init(opts)
}

// ActiveSelection returns how the process-wide backend was chosen. It is
// the zero Selection until Init has finished.
func ActiveSelection() Selection {
	return active.selected()
}

// fileExists checks absolute paths directly and bare names against PATH
func fileExists(path string) bool {
	if filepath.IsAbs(path) {
		return isFile(path)
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir != "" && isFile(filepath.Join(dir, path)) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
