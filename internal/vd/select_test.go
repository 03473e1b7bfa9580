package vd

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

type stubBackend struct {
	Backend
	kind Kind
}

func (s stubBackend) Kind() Kind { return s.kind }

func selectOptions(present map[string]bool, loadErr error, staticErr error) SelectOptions {
	return SelectOptions{
		Executable: func() (string, error) { return filepath.Join("C:", "tools", "vdm.exe"), nil },
		Exists:     func(path string) bool { return present[path] },
		LoadDynamic: func(path string) (Backend, error) {
			if loadErr != nil {
				return nil, loadErr
			}
			return stubBackend{kind: KindDynamic}, nil
		},
		NewStatic: func() (Backend, error) {
			if staticErr != nil {
				return nil, staticErr
			}
			return stubBackend{kind: KindStatic}, nil
		},
	}
}

// === Backend Selection Tests ===

func TestSelect(t *testing.T) {
	beside := filepath.Join("C:", "tools", LibraryName)
	custom := filepath.Join("D:", "libs", LibraryName)
	loadFailed := errors.New("bad image")
	noCOM := errors.New("class not registered")

	tests := []struct {
		name      string
		extra     []string
		present   map[string]bool
		loadErr   error
		staticErr error
		wantKind  Kind
		wantPath  string
		wantErr   error
	}{
		{
			name:     "library beside executable",
			present:  map[string]bool{beside: true},
			wantKind: KindDynamic,
			wantPath: beside,
		},
		{
			name:     "library on search path",
			present:  map[string]bool{LibraryName: true},
			wantKind: KindDynamic,
			wantPath: LibraryName,
		},
		{
			name:     "executable directory wins over search path",
			present:  map[string]bool{beside: true, LibraryName: true},
			wantKind: KindDynamic,
			wantPath: beside,
		},
		{
			name:     "configured path probed first",
			extra:    []string{custom},
			present:  map[string]bool{beside: true, custom: true},
			wantKind: KindDynamic,
			wantPath: custom,
		},
		{
			name:     "library absent",
			present:  map[string]bool{},
			wantKind: KindStatic,
		},
		{
			name:     "library fails to load falls back to static",
			present:  map[string]bool{beside: true},
			loadErr:  loadFailed,
			wantKind: KindStatic,
		},
		{
			name:      "nothing available",
			present:   map[string]bool{beside: true},
			loadErr:   loadFailed,
			staticErr: noCOM,
			wantErr:   ErrNoBackendFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := selectOptions(tt.present, tt.loadErr, tt.staticErr)
			opts.LibraryPaths = tt.extra

			b, sel, err := Select(opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if b.Kind() != tt.wantKind || sel.Kind != tt.wantKind {
				t.Errorf("Select() kind = %s (selection %s), want %s", b.Kind(), sel.Kind, tt.wantKind)
			}
			if sel.LibraryPath != tt.wantPath {
				t.Errorf("Select() path = %q, want %q", sel.LibraryPath, tt.wantPath)
			}
		})
	}
}

func TestCandidatesOrder(t *testing.T) {
	opts := SelectOptions{
		LibraryPaths: []string{"X:\\a.dll"},
		Executable:   func() (string, error) { return filepath.Join("C:", "bin", "vdm.exe"), nil },
	}
	got := opts.Candidates()
	want := []string{"X:\\a.dll", filepath.Join("C:", "bin", LibraryName), LibraryName}
	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHandleSelectsOnce(t *testing.T) {
	var h handle
	calls := 0
	opts := selectOptions(map[string]bool{}, nil, nil)
	opts.NewStatic = func() (Backend, error) {
		calls++
		return stubBackend{kind: KindStatic}, nil
	}

	first, err := h.init(opts)
	if err != nil {
		t.Fatalf("init() error = %v", err)
	}

	present := selectOptions(map[string]bool{LibraryName: true}, nil, nil)
	second, err := h.init(present)
	if err != nil {
		t.Fatalf("second init() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("static backend created %d times, want 1", calls)
	}
	if second.Kind() != first.Kind() {
		t.Errorf("handle changed kind from %s to %s", first.Kind(), second.Kind())
	}
}

func TestHandleConcurrentInit(t *testing.T) {
	var h handle
	opts := selectOptions(map[string]bool{}, nil, nil)
	opts.NewStatic = func() (Backend, error) {
		return stubBackend{kind: KindStatic}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := h.init(opts); err != nil {
				t.Errorf("init() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if sel := h.selected(); sel.Kind != "" && sel.Kind != KindStatic {
				t.Errorf("selected() kind = %q mid-init", sel.Kind)
			}
		}()
	}
	wg.Wait()

	if got := h.selected().Kind; got != KindStatic {
		t.Errorf("selected() kind = %q, want %q", got, KindStatic)
	}
}
