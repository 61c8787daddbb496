package report

import (
	"github.com/goliatone/go-lsd/pkg/langdetect"
)

// Status is the outcome of a step or scenario.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusPending   Status = "pending"
	StatusUndefined Status = "undefined"
	StatusAmbiguous Status = "ambiguous"
)

// severity orders statuses from least to most severe.
var severity = map[Status]int{
	StatusPassed:    0,
	StatusSkipped:   1,
	StatusPending:   2,
	StatusUndefined: 3,
	StatusAmbiguous: 4,
	StatusFailed:    5,
}

// Severity returns the rank of s. Unknown statuses rank like skipped.
func (s Status) Severity() int {
	if rank, ok := severity[s]; ok {
		return rank
	}
	return severity[StatusSkipped]
}

// ParseStatus normalises raw status strings coming from test runners.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusPassed, StatusFailed, StatusSkipped, StatusPending, StatusUndefined, StatusAmbiguous:
		return Status(raw)
	case "":
		return StatusSkipped
	default:
		return StatusUndefined
	}
}

// Report is the root of a rendered document.
type Report struct {
	Title     string     `json:"title"`
	Scenarios []Scenario `json:"scenarios"`
	// Participants are declared up front in every sequence diagram, in
	// this order.
	Participants []Participant `json:"participants,omitempty"`
}

// Summary counts scenario outcomes.
func (r *Report) Summary() Summary {
	var summary Summary
	if r == nil {
		return summary
	}
	for _, scenario := range r.Scenarios {
		summary.add(scenario.Status())
	}
	return summary
}

// Scenario is one executed scenario.
type Scenario struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Facts       []Fact   `json:"facts,omitempty"`
	Steps       []Step   `json:"steps"`
	// Error holds a failure raised outside of a step (hooks, setup).
	Error string `json:"error,omitempty"`
	// SequenceDiagram is the PlantUML source drawn from the steps that
	// carry a route.
	SequenceDiagram string `json:"sequenceDiagram,omitempty"`
}

// Status is derived from the steps: the most severe step status wins, and a
// scenario level error always fails the scenario.
func (s Scenario) Status() Status {
	if s.Error != "" {
		return StatusFailed
	}
	status := StatusPassed
	for _, step := range s.Steps {
		current := ParseStatus(string(step.Status))
		if current.Severity() > status.Severity() {
			status = current
		}
	}
	return status
}

// Step is a single interaction or action inside a scenario.
type Step struct {
	ID string `json:"id"`
	// Label is the (possibly abbreviated) text shown in the report.
	Label string `json:"label"`
	// Detail keeps the full label when Label was abbreviated.
	Detail  string `json:"detail,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Status  Status `json:"status"`
	Body    string `json:"body,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Language reports the detected language of the captured body, or "" when
// the step carries no body.
func (s Step) Language() string {
	if s.Body == "" {
		return ""
	}
	return langdetect.Detect([]byte(s.Body))
}
