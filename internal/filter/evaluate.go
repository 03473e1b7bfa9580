package filter

import (
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/window"
)

// Decision is the outcome of matching one window
type Decision struct {
	Window       window.Window `json:"window"`
	RuleIndex    int           `json:"rule"`
	Action       Action        `json:"action"`
	Target       Target        `json:"target"`
	StopFlashing bool          `json:"stopFlashing,omitempty"`
}

// Matches reports whether w satisfies every condition of r, ignoring Enabled
func (r Rule) Matches(w window.Window) bool {
	if !r.Title.Matches(w.Title) || !r.Process.Matches(w.ProcessName) {
		return false
	}
	if r.WindowIndex.IsSet() && !r.WindowIndex.Contains(w.Index) {
		return false
	}
	if r.DesktopIndex.IsSet() {
		if w.Placement.Kind != vd.PlacementDesktop {
			return false
		}
		if !r.DesktopIndex.Contains(w.Placement.Desktop.Number()) {
			return false
		}
	}
	return true
}

// FirstMatch returns the index of the first active rule matching w
func FirstMatch(rules []Rule, w window.Window) (int, bool) {
	for i, r := range rules {
		if r.Active() && r.Matches(w) {
			return i, true
		}
	}
	return -1, false
}

// Evaluate decides, for each window, which rule claims it.
// Windows no rule matches are left out. Evaluate has no side effects.
func Evaluate(windows []window.Window, rules []Rule) []Decision {
	var decisions []Decision
	for _, w := range windows {
		i, ok := FirstMatch(rules, w)
		if !ok {
			continue
		}
		r := rules[i]
		decisions = append(decisions, Decision{
			Window:       w,
			RuleIndex:    i,
			Action:       r.Action,
			Target:       r.Target,
			StopFlashing: r.StopFlashing,
		})
	}
	return decisions
}
