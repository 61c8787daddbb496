package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-lsd/pkg/diagram"
	"github.com/goliatone/go-lsd/pkg/report"
)

// SampleReport returns a small report touching every part of the model: tags,
// facts, participants, a sequence diagram, steps with and without bodies, a
// failure and a skipped step.
func SampleReport() *report.Report {
	participants := []report.Participant{
		report.ParticipantActor.Called("customer", "Customer"),
		report.ParticipantDefault.Called("shop"),
		report.ParticipantBoundary.Called("gateway"),
	}
	paying := []report.Step{
		{ID: "step-1", Keyword: "Given", Label: "a basket with 3 items", From: "customer", To: "shop", Status: report.StatusPassed},
		{ID: "step-2", Keyword: "When", Label: "the customer pays", From: "shop", To: "gateway", Status: report.StatusPassed, Body: `{"amount": 42}`},
		{ID: "step-3", Keyword: "Then", Label: "the order is confirmed", Status: report.StatusPassed},
	}

	return &report.Report{
		Title:        "Checkout",
		Participants: participants,
		Scenarios: []report.Scenario{
			{
				ID:          "scenario-1",
				Title:       "Customer pays by card",
				Description: "The **happy** path.",
				Tags:        []string{"@payments", "@smoke"},
				Facts: []report.Fact{
					report.NewFact("customer", "alice"),
					report.NewFact("basket", "3 items"),
				},
				Steps:           paying,
				SequenceDiagram: diagram.Sequence(participants, nil, paying),
			},
			{
				ID:    "scenario-2",
				Title: "Card is declined",
				Tags:  []string{"@payments"},
				Steps: []report.Step{
					{ID: "step-4", Keyword: "Given", Label: "an expired card", Status: report.StatusPassed},
					{ID: "step-5", Keyword: "When", Label: "the customer pays", Status: report.StatusFailed, Error: "gateway said <no>"},
					{ID: "step-6", Keyword: "Then", Label: "an error is shown", Status: report.StatusSkipped},
				},
			},
		},
	}
}

// MustLoadReport loads a JSON report fixture.
func MustLoadReport(t *testing.T, path string) *report.Report {
	t.Helper()

	r, err := LoadReport(path)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	return r
}

// LoadReport reads a JSON fixture into a Report, returning an error for
// callers managing setup outside of *testing.T.
func LoadReport(path string) (*report.Report, error) {
	if path == "" {
		return nil, errors.New("testsupport: report path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read report: %w", err)
	}
	var out report.Report
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal report: %w", err)
	}
	return &out, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ. Facts are
// compared by their unexported fields.
func CompareGolden(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, append(opts, cmp.AllowUnexported(report.Fact{}))...)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
