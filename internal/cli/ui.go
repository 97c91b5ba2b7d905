package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette for the check report and the spinner.
var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorUpdate = lipgloss.Color("220") // amber
	colorValue  = lipgloss.Color("255")
	colorSubtle = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning = lipgloss.NewStyle().Foreground(colorUpdate)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)

	// Report columns.
	styleName       = lipgloss.NewStyle().Foreground(colorValue).Width(40)
	styleConstraint = lipgloss.NewStyle().Foreground(colorSubtle).Width(14)
	styleInstalled  = lipgloss.NewStyle().Foreground(colorSubtle).Width(12)
)

const iconArrow = "→"

// summary kinds for the last lines of a report.
type summary int

const (
	summaryOK summary = iota
	summaryUpdates
	summaryNote
)

// printSummary writes one report summary line to w.
func printSummary(w io.Writer, kind summary, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch kind {
	case summaryOK:
		fmt.Fprintln(w, StyleSuccess.Render("✓")+" "+msg)
	case summaryUpdates:
		fmt.Fprintln(w, StyleWarning.Render("! "+msg))
	default:
		fmt.Fprintln(w, "  "+StyleDim.Render(msg))
	}
}
