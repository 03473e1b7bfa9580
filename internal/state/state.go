package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/vdm-cli/internal/vd"
)

// Snapshot is one consistent reading of the desktop layout
type Snapshot struct {
	Count     int          `json:"count"`
	Current   vd.Desktop   `json:"current"`
	Desktops  []vd.Desktop `json:"desktops,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Known reports whether the snapshot has been filled in
func (s Snapshot) Known() bool {
	return s.Count > 0
}

// DesktopState is the process-wide observable desktop state
type DesktopState struct {
	snap Snapshot
	// focus remembers the last focused window per desktop id
	focus map[string]vd.WindowHandle

	mu sync.RWMutex
}

// NewDesktopState creates an empty state
func NewDesktopState() *DesktopState {
	return &DesktopState{
		focus: make(map[string]vd.WindowHandle),
	}
}

// Snapshot returns a copy of the current state
func (ds *DesktopState) Snapshot() Snapshot {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return copySnapshot(ds.snap)
}

func copySnapshot(s Snapshot) Snapshot {
	s.Desktops = append([]vd.Desktop(nil), s.Desktops...)
	return s
}

// Update stores next and returns the previous snapshot. changed is false when
// count, current desktop and names are all the same as before.
func (ds *DesktopState) Update(next Snapshot) (prev Snapshot, changed bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	prev = copySnapshot(ds.snap)
	changed = !Equal(prev, next)

	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	ds.snap = copySnapshot(next)
	return prev, changed
}

// RememberFocus records hwnd as the last focused window on desktop
func (ds *DesktopState) RememberFocus(desktop vd.Desktop, hwnd vd.WindowHandle) {
	if hwnd == 0 {
		return
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.focus[focusKey(desktop)] = hwnd
}

// LastFocus returns the window last focused on desktop, if any
func (ds *DesktopState) LastFocus(desktop vd.Desktop) (vd.WindowHandle, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	h, ok := ds.focus[focusKey(desktop)]
	return h, ok
}

// ForgetFocus drops a remembered window, e.g. after it has closed
func (ds *DesktopState) ForgetFocus(desktop vd.Desktop) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.focus, focusKey(desktop))
}

func focusKey(d vd.Desktop) string {
	if d.ID != "" {
		return vd.NormalizeID(d.ID)
	}
	return fmt.Sprintf("#%d", d.Index)
}
