// Package style provides the terminal styling shared by all erk
// commands, built on the palette in internal/ui.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/dagster-io/erk-sub014/internal/ui"
)

var (
	Success = lipgloss.NewStyle().Foreground(ui.ColorPass).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(ui.ColorWarn).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(ui.ColorFail).Bold(true)
	Dim     = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	Bold    = lipgloss.NewStyle().Bold(true)
)

// SuccessPrefix is the checkmark prefix used on success lines.
var SuccessPrefix = Success.Render(ui.IconPass)

// PrintWarning prints a styled warning to stdout. Arguments work like
// fmt.Printf.
func PrintWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", Warning.Render(ui.IconWarn+" Warning:"), fmt.Sprintf(format, args...))
}

// PrintError prints a styled error to stderr.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Error.Render("Error:"), fmt.Sprintf(format, args...))
}
