package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
)

// StripOptions controls the appearance of the desktop strip
type StripOptions struct {
	ShowNames bool
	MaxName   int
}

// DefaultStripOptions returns sensible defaults
func DefaultStripOptions() StripOptions {
	return StripOptions{
		ShowNames: true,
		MaxName:   16,
	}
}

var currentCell = color.New(color.FgBlack, color.BgCyan)

// RenderStrip draws the desktops on one line with the current one highlighted:
//
//	[1] [2: Mail] [3]
func RenderStrip(snap state.Snapshot, opts StripOptions) string {
	if !snap.Known() {
		return "(no desktops)"
	}

	cells := make([]string, 0, len(snap.Desktops))
	for _, d := range snap.Desktops {
		label := fmt.Sprintf("%d", d.Number())
		if opts.ShowNames && d.Name != "" {
			label = fmt.Sprintf("%d: %s", d.Number(), truncate(d.Name, opts.MaxName))
		}
		cell := "[" + label + "]"
		if vd.SameDesktop(d, snap.Current) {
			cell = currentCell.Sprint(cell)
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, " ")
}
