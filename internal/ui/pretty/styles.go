// Package pretty provides Lipgloss-based styled output for the lsd-report
// command.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains the styled renderers for CLI output.
type Styles struct {
	// Status styles
	Passed    lipgloss.Style
	Failed    lipgloss.Style
	Skipped   lipgloss.Style
	Pending   lipgloss.Style
	Undefined lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Path         lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func newColorStyles() *Styles {
	return &Styles{
		Passed:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Skipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Undefined: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		SummaryValue: lipgloss.NewStyle(),
		Path:         lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true),

		Dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Passed:       plain,
		Failed:       plain,
		Skipped:      plain,
		Pending:      plain,
		Undefined:    plain,
		SummaryTitle: plain,
		SummaryValue: plain,
		Path:         plain,
		Dim:          plain,
		Bold:         plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
