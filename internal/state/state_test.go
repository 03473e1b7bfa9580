package state

import (
	"sync"
	"testing"

	"github.com/yourusername/vdm-cli/internal/vd"
)

func snapshot(current int, names ...string) Snapshot {
	s := Snapshot{Count: len(names)}
	for i, n := range names {
		s.Desktops = append(s.Desktops, vd.Desktop{ID: string(rune('a' + i)), Index: i, Name: n})
	}
	if current < len(s.Desktops) {
		s.Current = s.Desktops[current]
	}
	return s
}

func TestNewDesktopState(t *testing.T) {
	ds := NewDesktopState()
	if ds.Snapshot().Known() {
		t.Error("new state should not be known")
	}
	if n := ds.Snapshot().Count; n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestUpdate(t *testing.T) {
	ds := NewDesktopState()

	_, changed := ds.Update(snapshot(0, "", ""))
	if !changed {
		t.Error("first update should report a change")
	}

	_, changed = ds.Update(snapshot(0, "", ""))
	if changed {
		t.Error("identical update should not report a change")
	}

	prev, changed := ds.Update(snapshot(1, "", ""))
	if !changed {
		t.Error("current desktop change not detected")
	}
	if prev.Current.Index != 0 {
		t.Errorf("prev current = %d, want 0", prev.Current.Index)
	}
	if got := ds.Snapshot().Current.Index; got != 1 {
		t.Errorf("Current = %d, want 1", got)
	}

	if _, changed = ds.Update(snapshot(1, "", "", "")); !changed {
		t.Error("count change not detected")
	}
	if _, changed = ds.Update(snapshot(1, "", "Mail", "")); !changed {
		t.Error("rename not detected")
	}
}

func TestUpdateSetsTimestamp(t *testing.T) {
	ds := NewDesktopState()
	ds.Update(snapshot(0, ""))
	if ds.Snapshot().UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	ds := NewDesktopState()
	ds.Update(snapshot(0, "one", "two"))

	s := ds.Snapshot()
	s.Desktops[0].Name = "changed"

	if got := ds.Snapshot().Desktops[0].Name; got != "one" {
		t.Errorf("stored name = %q, want one (snapshot leaked internal slice)", got)
	}
}

func TestRenamedDesktops(t *testing.T) {
	prev := snapshot(0, "", "Mail", "Code")
	next := snapshot(0, "Home", "Mail", "Work")

	got := RenamedDesktops(prev, next)
	if len(got) != 2 || got[0].Name != "Home" || got[1].Name != "Work" {
		t.Errorf("RenamedDesktops() = %+v, want Home and Work", got)
	}
}

func TestFocusMemory(t *testing.T) {
	ds := NewDesktopState()
	d := vd.Desktop{ID: "{ABC}", Index: 1}

	if _, ok := ds.LastFocus(d); ok {
		t.Error("LastFocus on empty state should miss")
	}

	ds.RememberFocus(d, 0x42)
	ds.RememberFocus(d, 0)

	got, ok := ds.LastFocus(vd.Desktop{ID: "abc", Index: 7})
	if !ok || got != 0x42 {
		t.Errorf("LastFocus() = %v, %v; want 0x42 (ids compare normalized, zero handle ignored)", got, ok)
	}

	ds.ForgetFocus(d)
	if _, ok := ds.LastFocus(d); ok {
		t.Error("ForgetFocus did not forget")
	}
}

func TestConcurrentAccess(t *testing.T) {
	ds := NewDesktopState()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ds.Update(snapshot(i%3, "", "", ""))
		}(i)
		go func() {
			defer wg.Done()
			_ = ds.Snapshot()
			_, _ = ds.LastFocus(vd.Desktop{ID: "a"})
		}()
	}
	wg.Wait()
}
