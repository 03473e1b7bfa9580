package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/vdm-cli/internal/filter"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/window"
)

// PrintDesktopsTable prints desktops in a table format, marking the current one
func PrintDesktopsTable(w io.Writer, desktops []vd.Desktop, current vd.Desktop) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Name", "ID", "Current")

	for _, d := range desktops {
		active := ""
		if vd.SameDesktop(d, current) {
			active = "*"
		}
		table.Append(
			fmt.Sprintf("%d", d.Number()),
			truncate(d.Name, 30),
			d.ID,
			active,
		)
	}

	table.Render()
}

// PrintWindowsTable prints windows in enumeration order
func PrintWindowsTable(w io.Writer, windows []window.Window) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Handle", "Title", "Process", "PID", "Desktop")

	sorted := make([]window.Window, len(windows))
	copy(sorted, windows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	for _, win := range sorted {
		table.Append(
			fmt.Sprintf("%d", win.Index),
			win.Handle.String(),
			truncate(oneLine(win.Title), 40),
			truncate(win.ProcessName, 20),
			fmt.Sprintf("%d", win.ProcessID),
			win.Placement.String(),
		)
	}

	table.Render()
}

// PrintRulesTable prints rules in evaluation order
func PrintRulesTable(w io.Writer, rules []filter.Rule) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Name", "Action", "Desktop", "Title", "Process", "Window #", "On desktop")

	for i, r := range rules {
		action := string(r.Action)
		if !r.Enabled {
			action += " (off)"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(r.Name, 20),
			action,
			r.Target.String(),
			truncate(r.Title.String(), 30),
			truncate(r.Process.String(), 20),
			r.WindowIndex.String(),
			r.DesktopIndex.String(),
		)
	}

	table.Render()
}

// PrintDecisionsTable prints which rule claimed each window
func PrintDecisionsTable(w io.Writer, decisions []filter.Decision) {
	table := tablewriter.NewWriter(w)
	table.Header("Handle", "Title", "Process", "Now", "Rule", "Action", "Target")

	for _, d := range decisions {
		table.Append(
			d.Window.Handle.String(),
			truncate(oneLine(d.Window.Title), 35),
			truncate(d.Window.ProcessName, 20),
			d.Window.Placement.String(),
			fmt.Sprintf("%d", d.RuleIndex+1),
			string(d.Action),
			d.Target.String(),
		)
	}

	table.Render()
}

// PrintFailuresTable prints the windows a batch could not handle
func PrintFailuresTable(w io.Writer, failures []filter.Failure) {
	if len(failures) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Handle", "Title", "Action", "Error")

	for _, f := range failures {
		table.Append(
			f.Handle.String(),
			truncate(oneLine(f.Title), 30),
			string(f.Action),
			truncate(f.Error, 60),
		)
	}

	table.Render()
}

// PrintSelection prints how the backend was chosen
func PrintSelection(w io.Writer, sel vd.Selection) {
	fmt.Fprintf(w, "Backend: %s\n", sel.Kind)
	if sel.LibraryPath != "" {
		fmt.Fprintf(w, "Library: %s\n", sel.LibraryPath)
	}
	if len(sel.Probed) > 0 {
		fmt.Fprintf(w, "Probed: %s\n", strings.Join(sel.Probed, ", "))
	}
	if sel.LoadError != "" {
		fmt.Fprintf(w, "Load error: %s\n", sel.LoadError)
	}
}

// Helper functions

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func oneLine(s string) string {
	return strings.ReplaceAll(window.NormalizeTitle(s), "\n", " ")
}
