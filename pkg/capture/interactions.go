package capture

import (
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-lsd/pkg/report"
)

// interaction matches "<label> from <source> to <target>". The label is
// greedy so it may itself contain " from ".
var interaction = regexp.MustCompile(`(?is)^(.*\S)\s+from\s+(.+?)\s+to\s+(.+)$`)

// Interpret turns a captured pattern into a passed step. Patterns of the form
// "<label> from <A> to <B>" become an interaction between A and B; anything
// else is kept as a plain step labelled with the pattern. body is attached
// as the step body.
func Interpret(pattern, body string) report.Step {
	pattern = strings.TrimSpace(pattern)
	step := report.Step{Label: pattern, Body: body, Status: report.StatusPassed}
	if m := interaction.FindStringSubmatch(pattern); m != nil {
		step.Label = strings.TrimSpace(m[1])
		step.From = strings.TrimSpace(m[2])
		step.To = strings.TrimSpace(m[3])
	}
	return step
}

// Capture records an interaction described by pattern in the current
// scenario. See Interpret for the pattern syntax.
func (r *Recorder) Capture(pattern, body string) report.Step {
	step := Interpret(pattern, body)
	r.RecordStep(step)
	return step
}

// AddParticipants declares participants for the sequence diagrams of every
// report completed from now on. Participants keep the order they were first
// added in; names already known are ignored.
func (r *Recorder) AddParticipants(participants ...report.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = report.MergeParticipants(r.participants, participants...)
}

// IncludeFiles adds PlantUML includes (icon sets, skins) to every sequence
// diagram. Duplicates are ignored.
func (r *Recorder) IncludeFiles(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || slices.Contains(r.includes, path) {
			continue
		}
		r.includes = append(r.includes, path)
	}
}

// Import queues the scenarios of an existing report for the next completed
// report. Its participants are declared for that report only.
func (r *Recorder) Import(rep *report.Report) {
	if rep == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios = append(r.scenarios, rep.Scenarios...)
	r.imported = report.MergeParticipants(r.imported, rep.Participants...)
}
