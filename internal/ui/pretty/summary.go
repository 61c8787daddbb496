package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-lsd/pkg/report"
)

const summaryDividerWidth = 40

// Status returns the style used for status.
func (s *Styles) Status(status report.Status) lipgloss.Style {
	switch status {
	case report.StatusPassed:
		return s.Passed
	case report.StatusFailed, report.StatusAmbiguous:
		return s.Failed
	case report.StatusPending:
		return s.Pending
	case report.StatusUndefined:
		return s.Undefined
	default:
		return s.Skipped
	}
}

// FormatEntry formats one written report as a single line.
// Example: "✓ Checkout  2 scenarios (1 passed, 1 failed)  checkout.html".
func (s *Styles) FormatEntry(entry report.IndexEntry) string {
	outcome := entry.Summary.Outcome()
	mark := "✓"
	if !entry.Summary.IsSuccessful() {
		mark = "✗"
	}

	scenarioWord := "scenarios"
	if entry.Summary.Total == 1 {
		scenarioWord = "scenario"
	}

	return fmt.Sprintf("%s %s  %d %s (%s)  %s\n",
		s.Status(outcome).Render(mark),
		s.Bold.Render(entry.Title),
		entry.Summary.Total,
		scenarioWord,
		s.breakdown(entry.Summary),
		s.Path.Render(entry.File),
	)
}

func (s *Styles) breakdown(summary report.Summary) string {
	counts := []struct {
		n      int
		status report.Status
	}{
		{summary.Passed, report.StatusPassed},
		{summary.Failed, report.StatusFailed},
		{summary.Skipped, report.StatusSkipped},
		{summary.Pending, report.StatusPending},
		{summary.Undefined, report.StatusUndefined},
	}

	var parts []string
	for _, c := range counts {
		if c.n == 0 {
			continue
		}
		parts = append(parts, s.Status(c.status).Render(fmt.Sprintf("%d %s", c.n, c.status)))
	}
	if len(parts) == 0 {
		return s.Dim.Render("empty")
	}
	return strings.Join(parts, ", ")
}

// FormatSummary formats the totals of a run as a summary block.
func (s *Styles) FormatSummary(entries []report.IndexEntry, indexPath string) string {
	var total report.Summary
	for _, entry := range entries {
		total.Total += entry.Summary.Total
		total.Passed += entry.Summary.Passed
		total.Failed += entry.Summary.Failed
		total.Skipped += entry.Summary.Skipped
		total.Pending += entry.Summary.Pending
		total.Undefined += entry.Summary.Undefined
	}

	var builder strings.Builder
	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Reports:    " + s.SummaryValue.Render(strconv.Itoa(len(entries))) + "\n")
	builder.WriteString("  Scenarios:  " + s.SummaryValue.Render(strconv.Itoa(total.Total)) + "\n")
	builder.WriteString("  Outcome:    " + s.Status(total.Outcome()).Render(string(total.Outcome())) + "\n")
	if indexPath != "" {
		builder.WriteString("  Index:      " + s.Path.Render(indexPath) + "\n")
	}
	return builder.String()
}
