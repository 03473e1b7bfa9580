package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/vdm-cli/internal/filter"
)

// ParsePattern parses a title or process pattern
// Supported formats:
//   - omitted or "" - match anything
//   - "Untitled - Notepad" - one candidate
//   - ["Mail", "Calendar"] - any of several candidates
//
// A candidate spanning several lines matches when its lines appear in order.
func ParsePattern(v interface{}) (filter.Pattern, error) {
	switch val := v.(type) {
	case nil:
		return filter.NewPattern(), nil
	case string:
		if val == "" {
			return filter.NewPattern(), nil
		}
		return filter.NewPattern(val), nil
	case []string:
		return filter.NewPattern(val...), nil
	case []interface{}:
		candidates := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return filter.Pattern{}, fmt.Errorf("pattern item %d: expected string, got %T", i, item)
			}
			candidates[i] = s
		}
		return filter.NewPattern(candidates...), nil
	default:
		return filter.Pattern{}, fmt.Errorf("invalid pattern type: %T", v)
	}
}

// ParseTarget parses a desktop reference
// Supported formats:
//   - 3 or "3" - one-based desktop index
//   - "{8F2E...}" or "8f2e..." - desktop id
func ParseTarget(v interface{}) (filter.Target, error) {
	switch val := v.(type) {
	case nil:
		return filter.Target{}, nil
	case int:
		return indexTarget(val)
	case float64:
		if val != float64(int(val)) {
			return filter.Target{}, fmt.Errorf("desktop index must be a whole number: %v", val)
		}
		return indexTarget(int(val))
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return indexTarget(n)
		}
		id, err := uuid.Parse(strings.Trim(s, "{}"))
		if err != nil {
			return filter.Target{}, fmt.Errorf("invalid desktop %q: want index or id", val)
		}
		return filter.Target{ID: FormatDesktopID(id)}, nil
	default:
		return filter.Target{}, fmt.Errorf("invalid desktop type: %T", v)
	}
}

func indexTarget(n int) (filter.Target, error) {
	if n < 1 {
		return filter.Target{}, fmt.Errorf("desktop index must be >= 1: %d", n)
	}
	return filter.Target{Number: n}, nil
}

// FormatDesktopID renders an id the way the shell does: braced, upper case
func FormatDesktopID(id uuid.UUID) string {
	return "{" + strings.ToUpper(id.String()) + "}"
}

// ParseRange converts a range config, checking bounds
func ParseRange(rc *RangeConfig) (filter.Range, error) {
	if rc == nil {
		return filter.Range{}, nil
	}
	if rc.Min != nil && *rc.Min < 1 {
		return filter.Range{}, fmt.Errorf("min must be >= 1: %d", *rc.Min)
	}
	if rc.Max != nil && *rc.Max < 1 {
		return filter.Range{}, fmt.Errorf("max must be >= 1: %d", *rc.Max)
	}
	if rc.Min != nil && rc.Max != nil && *rc.Min > *rc.Max {
		return filter.Range{}, fmt.Errorf("min %d greater than max %d", *rc.Min, *rc.Max)
	}
	return filter.Range{Min: rc.Min, Max: rc.Max}, nil
}

// ToRule converts a filter config to a rule
func (fc *FilterConfig) ToRule() (filter.Rule, error) {
	action, err := filter.ParseAction(fc.Action)
	if err != nil {
		return filter.Rule{}, err
	}

	target, err := ParseTarget(fc.Desktop)
	if err != nil {
		return filter.Rule{}, err
	}
	if action.NeedsTarget() && target.IsZero() {
		return filter.Rule{}, fmt.Errorf("action %s needs a desktop", action)
	}

	title, err := ParsePattern(fc.Title)
	if err != nil {
		return filter.Rule{}, fmt.Errorf("title: %w", err)
	}
	process, err := ParsePattern(fc.Process)
	if err != nil {
		return filter.Rule{}, fmt.Errorf("process: %w", err)
	}

	windowIndex, err := ParseRange(fc.WindowIndex)
	if err != nil {
		return filter.Rule{}, fmt.Errorf("windowIndex: %w", err)
	}
	desktopIndex, err := ParseRange(fc.DesktopIndex)
	if err != nil {
		return filter.Rule{}, fmt.Errorf("desktopIndex: %w", err)
	}

	return filter.Rule{
		Name:         fc.Name,
		Enabled:      fc.Enabled == nil || *fc.Enabled,
		Action:       action,
		Target:       target,
		Title:        title,
		Process:      process,
		WindowIndex:  windowIndex,
		DesktopIndex: desktopIndex,
		StopFlashing: fc.StopFlashing,
	}, nil
}
