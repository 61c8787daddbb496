package pretty_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-lsd/internal/ui/pretty"
	"github.com/goliatone/go-lsd/pkg/report"
)

func TestIsColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, pretty.IsColorEnabled("always", &buf))
	assert.False(t, pretty.IsColorEnabled("never", &buf))
	assert.False(t, pretty.IsColorEnabled("auto", &buf), "buffers are not terminals")
}

func TestFormatEntry(t *testing.T) {
	styles := pretty.NewStyles(false)

	line := styles.FormatEntry(report.IndexEntry{
		Title:   "Checkout",
		File:    "checkout.html",
		Summary: report.Summary{Total: 2, Passed: 1, Failed: 1},
	})
	assert.Equal(t, "✗ Checkout  2 scenarios (1 passed, 1 failed)  checkout.html\n", line)

	single := styles.FormatEntry(report.IndexEntry{
		Title:   "Login",
		File:    "login.html",
		Summary: report.Summary{Total: 1, Passed: 1},
	})
	assert.Equal(t, "✓ Login  1 scenario (1 passed)  login.html\n", single)

	empty := styles.FormatEntry(report.IndexEntry{Title: "Empty", File: "empty.html"})
	assert.Contains(t, empty, "(empty)")
}

func TestFormatSummary(t *testing.T) {
	styles := pretty.NewStyles(false)

	out := styles.FormatSummary([]report.IndexEntry{
		{Summary: report.Summary{Total: 2, Passed: 2}},
		{Summary: report.Summary{Total: 3, Passed: 1, Pending: 2}},
	}, "out/index.html")

	assert.Contains(t, out, "Reports:    2")
	assert.Contains(t, out, "Scenarios:  5")
	assert.Contains(t, out, "Outcome:    pending")
	assert.Contains(t, out, "Index:      out/index.html")
	assert.False(t, strings.Contains(out, "\x1b["), "no colour codes without colour")
}
