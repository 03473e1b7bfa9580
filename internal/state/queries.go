package state

import "github.com/yourusername/vdm-cli/internal/vd"

// Equal reports whether two snapshots describe the same layout.
// Timestamps are ignored.
func Equal(a, b Snapshot) bool {
	if a.Count != b.Count {
		return false
	}
	if !vd.SameDesktop(a.Current, b.Current) || a.Current.Index != b.Current.Index {
		return false
	}
	if len(a.Desktops) != len(b.Desktops) {
		return false
	}
	for i := range a.Desktops {
		if a.Desktops[i].ID != b.Desktops[i].ID || a.Desktops[i].Name != b.Desktops[i].Name {
			return false
		}
	}
	return true
}

// RenamedDesktops returns desktops whose name differs between prev and next.
// Desktops are paired by identifier.
func RenamedDesktops(prev, next Snapshot) []vd.Desktop {
	names := make(map[string]string, len(prev.Desktops))
	for _, d := range prev.Desktops {
		names[vd.NormalizeID(d.ID)] = d.Name
	}

	var renamed []vd.Desktop
	for _, d := range next.Desktops {
		old, ok := names[vd.NormalizeID(d.ID)]
		if ok && old != d.Name {
			renamed = append(renamed, d)
		}
	}
	return renamed
}
