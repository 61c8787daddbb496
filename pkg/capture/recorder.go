// Package capture records scenarios while tests run and turns them into
// reports: facts and steps are added to the current scenario, scenarios are
// completed with a title, and completing a report writes it out and adds it
// to the run index.
package capture

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-lsd/internal/logging"
	"github.com/goliatone/go-lsd/pkg/config"
	"github.com/goliatone/go-lsd/pkg/diagram"
	"github.com/goliatone/go-lsd/pkg/report"
	"github.com/goliatone/go-lsd/pkg/writer"
)

// DefaultIndexTitle titles the index page when none is configured.
const DefaultIndexTitle = "Living Sequence Diagrams"

// Option configures a Recorder.
type Option func(*Recorder)

// WithWriter writes completed reports and the index through w. Without a
// writer CompleteReport only builds the report.
func WithWriter(w *writer.Writer) Option {
	return func(r *Recorder) {
		r.writer = w
	}
}

// WithIndexTitle sets the index page title.
func WithIndexTitle(title string) Option {
	return func(r *Recorder) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			r.indexTitle = trimmed
		}
	}
}

// Recorder collects scenarios for the reports of one run. It is safe for
// concurrent use.
type Recorder struct {
	mu         sync.Mutex
	ids        *report.IDGenerator
	maxWidth   int
	writer     *writer.Writer
	indexTitle string

	current   draft
	scenarios []report.Scenario
	entries   []report.IndexEntry

	// participants and includes apply to every report of the run; imported
	// participants only to the next completed report.
	participants []report.Participant
	includes     []string
	imported     []report.Participant
}

type draft struct {
	facts []report.Fact
	steps []report.Step
	err   string
}

// New creates a recorder configured from props (label width, deterministic
// identifiers). A nil props uses the defaults.
func New(props *config.Properties, options ...Option) *Recorder {
	if props == nil {
		props = config.Default()
	}
	r := &Recorder{
		ids:        report.NewIDGenerator(props.Bool(config.KeyDeterministicIDs, false)),
		maxWidth:   props.Int(config.KeyLabelMaxWidth, config.DefaultLabelMaxWidth),
		indexTitle: DefaultIndexTitle,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// AddFact attaches a key/value note to the current scenario.
func (r *Recorder) AddFact(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current.facts = append(r.current.facts, report.NewFact(key, value))
}

// RecordStep appends a step to the current scenario.
func (r *Recorder) RecordStep(step report.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current.steps = append(r.current.steps, step)
}

// FailScenario marks the current scenario as failed outside of any step.
func (r *Recorder) FailScenario(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current.err = strings.TrimSpace(message)
}

// CompleteScenario closes the current scenario under title and starts a new
// one.
func (r *Recorder) CompleteScenario(title, description string, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios = append(r.scenarios, report.Scenario{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Tags:        append([]string(nil), tags...),
		Facts:       r.current.facts,
		Steps:       r.current.steps,
		Error:       r.current.err,
	})
	r.current = draft{}
}

// AddScenario appends a scenario recorded elsewhere (for example by the
// godog hooks) without touching the current scenario.
func (r *Recorder) AddScenario(scenario report.Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios = append(r.scenarios, scenario)
}

// Pending returns the number of completed scenarios waiting for a report.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.scenarios)
}

// CompleteReport builds a report from every completed scenario, assigning
// identifiers and abbreviating step labels. With a writer the report is
// written and added to the index. The scenarios it holds and the current
// scenario are cleared once the report is complete; a failed write keeps
// them so the caller can retry.
func (r *Recorder) CompleteReport(ctx context.Context, title string) (*report.Report, error) {
	r.mu.Lock()
	rep := r.buildReport(title)
	included := len(r.scenarios)
	r.mu.Unlock()

	logger := logging.FromContext(ctx)
	logger.Debug("report completed", logging.FieldReport, rep.Title, logging.FieldScenarios, len(rep.Scenarios))

	var entry report.IndexEntry
	if r.writer != nil {
		var err error
		entry, err = r.writer.WriteReport(ctx, rep)
		if err != nil {
			logger.Warn("report not written, scenarios kept", logging.FieldReport, rep.Title, logging.FieldError, err)
			return rep, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// scenarios added while the report was written belong to the next one
	if included > len(r.scenarios) {
		included = len(r.scenarios)
	}
	r.scenarios = append([]report.Scenario(nil), r.scenarios[included:]...)
	r.current = draft{}
	r.imported = nil
	if r.writer != nil {
		r.entries = append(r.entries, entry)
	}
	return rep, nil
}

// Entries returns the index entries of the reports written so far.
func (r *Recorder) Entries() []report.IndexEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]report.IndexEntry(nil), r.entries...)
}

// CreateIndex writes the index page listing every written report and
// returns its path.
func (r *Recorder) CreateIndex(ctx context.Context) (string, error) {
	if r.writer == nil {
		return "", errors.New("capture: no writer configured")
	}
	r.mu.Lock()
	idx := report.Index{Title: r.indexTitle, Entries: append([]report.IndexEntry(nil), r.entries...)}
	r.mu.Unlock()

	return r.writer.WriteIndex(ctx, idx)
}

// Clear drops the completed scenarios and the current scenario. Written
// reports stay in the index.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios = nil
	r.current = draft{}
	r.imported = nil
}

func (r *Recorder) buildReport(title string) *report.Report {
	rep := &report.Report{
		Title:        strings.TrimSpace(title),
		Participants: report.MergeParticipants(r.participants, r.imported...),
	}
	for _, captured := range r.scenarios {
		scenario := captured
		if scenario.ID == "" {
			scenario.ID = r.ids.Next()
		}
		scenario.Steps = make([]report.Step, len(captured.Steps))
		for i, step := range captured.Steps {
			if step.ID == "" {
				step.ID = r.ids.Next()
			}
			scenario.Steps[i] = step.WithAbbreviatedLabel(r.maxWidth)
		}
		if scenario.SequenceDiagram == "" {
			scenario.SequenceDiagram = diagram.Sequence(rep.Participants, r.includes, scenario.Steps)
		}
		rep.Scenarios = append(rep.Scenarios, scenario)
	}
	return rep
}
