package filter

import "testing"

// === Pattern Tests ===

func TestPatternMatches(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		value      string
		want       bool
	}{
		{"empty pattern matches anything", nil, "Untitled - Notepad", true},
		{"empty pattern matches empty", nil, "", true},
		{"single line exact", []string{"Untitled - Notepad"}, "Untitled - Notepad", true},
		{"single line is not substring", []string{"Notepad"}, "Untitled - Notepad", false},
		{"single line is case sensitive", []string{"notepad"}, "Notepad", false},
		{"single line superset rejected", []string{"Untitled - Notepad"}, "Untitled - Notepad 2", false},
		{"multi line in order", []string{"Inbox\nGmail"}, "Inbox (3) - Gmail - Chrome", true},
		{"multi line wrong order", []string{"Inbox\nGmail"}, "Gmail - Inbox (3)", false},
		{"multi line tolerates insertions", []string{"a\nb\nc"}, "xxaYYbZZcww", true},
		{"multi line adjacent fragments", []string{"ab\ncd"}, "abcd", true},
		{"multi line fragments do not overlap", []string{"aba\naba"}, "ababa", false},
		{"multi line missing fragment", []string{"a\nb\nc"}, "a b", false},
		{"crlf in pattern", []string{"Inbox\r\nGmail"}, "Inbox - Gmail", true},
		{"trailing newline allows suffix", []string{"Report\n"}, "Report.docx - Word", true},
		{"any candidate suffices", []string{"Mail", "Calendar"}, "Calendar", true},
		{"no candidate matches", []string{"Mail", "Calendar"}, "Photos", false},
		{"crlf in value", []string{"a\nb"}, "a\r\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPattern(tt.candidates...)
			if got := p.Matches(tt.value); got != tt.want {
				t.Errorf("NewPattern(%q).Matches(%q) = %v, want %v", tt.candidates, tt.value, got, tt.want)
			}
		})
	}
}

func TestPatternString(t *testing.T) {
	tests := []struct {
		candidates []string
		want       string
	}{
		{nil, "*"},
		{[]string{"a"}, "a"},
		{[]string{"a\nb", "c"}, `a\nb | c`},
	}
	for _, tt := range tests {
		if got := NewPattern(tt.candidates...).String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.candidates, got, tt.want)
		}
	}
}

func TestRangeContains(t *testing.T) {
	one, three := 1, 3
	tests := []struct {
		r    Range
		v    int
		want bool
	}{
		{Range{}, 99, true},
		{Range{Min: &one}, 0, false},
		{Range{Min: &one}, 1, true},
		{Range{Max: &three}, 3, true},
		{Range{Max: &three}, 4, false},
		{Range{Min: &one, Max: &three}, 2, true},
	}
	for _, tt := range tests {
		if got := tt.r.Contains(tt.v); got != tt.want {
			t.Errorf("Range(%s).Contains(%d) = %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, err)
		}
	}
	if got, err := ParseAction(""); err != nil || got != ActionMove {
		t.Errorf("ParseAction(\"\") = %q, %v; want move", got, err)
	}
	if _, err := ParseAction("teleport"); err == nil {
		t.Error("ParseAction(teleport) expected error")
	}
}
