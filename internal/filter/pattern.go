package filter

import (
	"strings"

	"github.com/yourusername/vdm-cli/internal/window"
)

// Pattern is a set of candidate texts; a value matches if any candidate does.
//
// A single-line candidate must equal the value exactly. A multi-line
// candidate is split into fragments that must appear in the value in order,
// with anything allowed before, between and after them. A pattern with no
// candidates matches every value.
type Pattern struct {
	candidates []string
}

// NewPattern builds a pattern. Line endings are normalized to LF.
func NewPattern(candidates ...string) Pattern {
	p := Pattern{}
	for _, c := range candidates {
		p.candidates = append(p.candidates, window.NormalizeTitle(c))
	}
	return p
}

// Candidates returns the normalized candidate texts
func (p Pattern) Candidates() []string {
	return append([]string(nil), p.candidates...)
}

// Matches reports whether value satisfies the pattern
func (p Pattern) Matches(value string) bool {
	if len(p.candidates) == 0 {
		return true
	}
	value = window.NormalizeTitle(value)
	for _, c := range p.candidates {
		if matchCandidate(c, value) {
			return true
		}
	}
	return false
}

func matchCandidate(candidate, value string) bool {
	if !strings.Contains(candidate, "\n") {
		return candidate == value
	}

	rest := value
	for _, fragment := range strings.Split(candidate, "\n") {
		i := strings.Index(rest, fragment)
		if i < 0 {
			return false
		}
		rest = rest[i+len(fragment):]
	}
	return true
}

// String renders the pattern on one line, showing line breaks as \n
func (p Pattern) String() string {
	if len(p.candidates) == 0 {
		return "*"
	}
	parts := make([]string, len(p.candidates))
	for i, c := range p.candidates {
		parts[i] = strings.ReplaceAll(c, "\n", `\n`)
	}
	return strings.Join(parts, " | ")
}
