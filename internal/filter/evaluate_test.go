package filter

import (
	"reflect"
	"testing"

	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/window"
)

func win(h vd.WindowHandle, title, process string, desktop int) window.Window {
	return window.Window{
		Handle:      h,
		Title:       title,
		ProcessName: process,
		Index:       int(h),
		Placement:   vd.Placement{Kind: vd.PlacementDesktop, Desktop: vd.Desktop{Index: desktop}},
	}
}

func moveTo(n int, title, process []string) Rule {
	return Rule{
		Enabled: true,
		Action:  ActionMove,
		Target:  Target{Number: n},
		Title:   NewPattern(title...),
		Process: NewPattern(process...),
	}
}

// === Evaluate Tests ===

func TestEvaluateNotepad(t *testing.T) {
	windows := []window.Window{win(1, "Untitled - Notepad", "notepad", 0)}
	rules := []Rule{moveTo(3, []string{"Untitled - Notepad"}, nil)}

	got := Evaluate(windows, rules)
	if len(got) != 1 {
		t.Fatalf("Evaluate() = %d decisions, want 1", len(got))
	}
	if got[0].Target.Number != 3 || got[0].Window.Handle != 1 {
		t.Errorf("decision = %+v, want window 1 to desktop 3", got[0])
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	windows := []window.Window{win(1, "Inbox (3) - Gmail - Chrome", "chrome", 0)}

	disabled := moveTo(5, nil, nil)
	disabled.Enabled = false
	off := moveTo(6, nil, nil)
	off.Action = ActionDisabled

	rules := []Rule{
		disabled,
		off,
		moveTo(7, []string{"Calendar"}, nil),
		moveTo(2, []string{"Inbox\nGmail"}, []string{"chrome"}),
		moveTo(4, nil, nil),
	}

	got := Evaluate(windows, rules)
	if len(got) != 1 {
		t.Fatalf("Evaluate() = %d decisions, want 1", len(got))
	}
	if got[0].RuleIndex != 3 || got[0].Target.Number != 2 {
		t.Errorf("decision rule %d target %d, want rule 3 target 2", got[0].RuleIndex, got[0].Target.Number)
	}
}

func TestEvaluateEmptyRuleMatchesAll(t *testing.T) {
	windows := []window.Window{
		win(1, "a", "x", 0),
		win(2, "", "", 1),
		win(3, "multi\nline", "y", 2),
	}
	got := Evaluate(windows, []Rule{moveTo(1, nil, nil)})
	if len(got) != len(windows) {
		t.Errorf("Evaluate() = %d decisions, want %d", len(got), len(windows))
	}
}

func TestEvaluateBothPatternsRequired(t *testing.T) {
	windows := []window.Window{win(1, "Untitled - Notepad", "notepad", 0)}
	rules := []Rule{moveTo(2, []string{"Untitled - Notepad"}, []string{"wordpad"})}
	if got := Evaluate(windows, rules); len(got) != 0 {
		t.Errorf("Evaluate() = %+v, want no decisions", got)
	}
}

func TestEvaluateNothingClaimsWindow(t *testing.T) {
	windows := []window.Window{win(1, "Secret", "vault", 0)}
	keep := moveTo(0, []string{"Secret"}, nil)
	keep.Action = ActionNothing

	got := Evaluate(windows, []Rule{keep, moveTo(2, nil, nil)})
	if len(got) != 1 || got[0].Action != ActionNothing {
		t.Errorf("Evaluate() = %+v, want single nothing decision", got)
	}
}

func TestEvaluateRanges(t *testing.T) {
	two, three := 2, 3
	pinned := win(4, "pinned", "p", 0)
	pinned.Placement = vd.Placement{Kind: vd.PlacementWindowPinned}

	windows := []window.Window{
		win(1, "a", "x", 0),
		win(2, "b", "x", 1),
		win(3, "c", "x", 2),
		pinned,
	}

	byWindow := moveTo(1, nil, nil)
	byWindow.WindowIndex = Range{Min: &two, Max: &three}
	if got := handles(Evaluate(windows, []Rule{byWindow})); !reflect.DeepEqual(got, []vd.WindowHandle{2, 3}) {
		t.Errorf("window index range matched %v, want [2 3]", got)
	}

	byDesktop := moveTo(1, nil, nil)
	byDesktop.DesktopIndex = Range{Min: &two}
	if got := handles(Evaluate(windows, []Rule{byDesktop})); !reflect.DeepEqual(got, []vd.WindowHandle{2, 3}) {
		t.Errorf("desktop index range matched %v, want [2 3]", got)
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	windows := []window.Window{
		win(1, "Inbox (3) - Gmail - Chrome", "chrome", 0),
		win(2, "Untitled - Notepad", "notepad", 1),
		win(3, "Terminal", "wt", 2),
	}
	rules := []Rule{
		moveTo(2, []string{"Inbox\nGmail"}, nil),
		moveTo(3, nil, []string{"notepad"}),
	}

	first := Evaluate(windows, rules)
	for i := 0; i < 5; i++ {
		if got := Evaluate(windows, rules); !reflect.DeepEqual(got, first) {
			t.Fatalf("Evaluate() run %d = %+v, want %+v", i, got, first)
		}
	}
}

func handles(ds []Decision) []vd.WindowHandle {
	var out []vd.WindowHandle
	for _, d := range ds {
		out = append(out, d.Window.Handle)
	}
	return out
}
