package filter

import (
	"fmt"

	"github.com/yourusername/vdm-cli/internal/vd"
)

// Action is what happens to a window matched by a rule
type Action string

const (
	ActionMove         Action = "move"
	ActionUnpinAndMove Action = "unpin-and-move"
	ActionUnpin        Action = "unpin"
	ActionPin          Action = "pin"
	// ActionNothing claims the window so later rules do not see it
	ActionNothing  Action = "nothing"
	ActionDisabled Action = "disabled"
)

// Actions lists every action in display order
var Actions = []Action{ActionMove, ActionUnpinAndMove, ActionUnpin, ActionPin, ActionNothing, ActionDisabled}

// ParseAction converts a config string to an Action. Empty means move.
func ParseAction(s string) (Action, error) {
	if s == "" {
		return ActionMove, nil
	}
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// NeedsTarget reports whether the action moves the window
func (a Action) NeedsTarget() bool {
	return a == ActionMove || a == ActionUnpinAndMove
}

// Range is an inclusive bound on a one-based index. Nil ends are open.
type Range struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// IsSet reports whether either bound is present
func (r Range) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d-%d", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf(">=%d", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("<=%d", *r.Max)
	}
	return "*"
}

// Target names a desktop by one-based index or by identifier
type Target struct {
	Number int    `json:"number,omitempty"`
	ID     string `json:"id,omitempty"`
}

// IsZero reports whether no desktop is named
func (t Target) IsZero() bool {
	return t.Number == 0 && t.ID == ""
}

// Resolve finds the target in a fresh desktop snapshot
func (t Target) Resolve(desktops []vd.Desktop) (vd.Desktop, error) {
	if t.ID != "" {
		return vd.ResolveID(desktops, t.ID)
	}
	if t.Number < 1 {
		return vd.Desktop{}, fmt.Errorf("%w: no target desktop", vd.ErrDesktopNotFound)
	}
	return vd.ResolveIndex(desktops, t.Number-1)
}

func (t Target) String() string {
	if t.ID != "" {
		return t.ID
	}
	if t.Number == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", t.Number)
}

// Rule routes matching windows to an action
type Rule struct {
	Name         string  `json:"name,omitempty"`
	Enabled      bool    `json:"enabled"`
	Action       Action  `json:"action"`
	Target       Target  `json:"target"`
	Title        Pattern `json:"-"`
	Process      Pattern `json:"-"`
	WindowIndex  Range   `json:"windowIndex"`
	DesktopIndex Range   `json:"desktopIndex"`
	StopFlashing bool    `json:"stopFlashing,omitempty"`
}

// Active reports whether the rule takes part in matching
func (r Rule) Active() bool {
	return r.Enabled && r.Action != ActionDisabled
}
