// Package cucumber imports cucumber JSON (as written by godog's "cucumber"
// formatter) into reports, one report per feature.
package cucumber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-lsd/pkg/report"
)

const backgroundType = "background"

// Parse decodes cucumber JSON. Noise printed before the JSON document (such
// as pretty formatter output or ANSI escape codes) is skipped.
func Parse(data []byte) ([]Feature, error) {
	data = cleanOutput(data)
	if len(data) == 0 {
		return nil, errors.New("cucumber: empty input")
	}
	var features []Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("cucumber: decode json: %w", err)
	}
	return features, nil
}

// Options tune the conversion into reports.
type Options struct {
	// IDs generates scenario identifiers for elements without one. A
	// deterministic generator is used when nil.
	IDs *report.IDGenerator
	// LabelMaxWidth abbreviates step labels; zero keeps them whole.
	LabelMaxWidth int
}

// Import parses data and converts every feature into a report.
func Import(data []byte, opts Options) ([]*report.Report, error) {
	features, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return ToReports(features, opts), nil
}

// ToReports converts features into reports, preserving order. Background
// steps are prepended to the scenarios that follow them.
func ToReports(features []Feature, opts Options) []*report.Report {
	ids := opts.IDs
	if ids == nil {
		ids = report.NewIDGenerator(true)
	}

	reports := make([]*report.Report, 0, len(features))
	for _, feature := range features {
		title := strings.TrimSpace(feature.Name)
		if title == "" {
			title = feature.URI
		}
		rep := &report.Report{Title: title}

		var background []Step
		for _, element := range feature.Elements {
			if strings.EqualFold(element.Type, backgroundType) {
				background = element.Steps
				continue
			}
			steps := element.Steps
			if len(background) > 0 {
				steps = append(append([]Step{}, background...), steps...)
			}
			rep.Scenarios = append(rep.Scenarios, toScenario(element, steps, feature.Tags, ids, opts.LabelMaxWidth))
		}
		reports = append(reports, rep)
	}
	return reports
}

func toScenario(element Element, steps []Step, featureTags []Tag, ids *report.IDGenerator, maxWidth int) report.Scenario {
	id := strings.TrimSpace(element.ID)
	if id == "" {
		id = ids.Next()
	}

	scenario := report.Scenario{
		ID:          id,
		Title:       strings.TrimSpace(element.Name),
		Description: strings.TrimSpace(element.Description),
		Tags:        mergeTags(featureTags, element.Tags),
	}
	for i, step := range steps {
		var body string
		if step.DocString != nil {
			body = step.DocString.Value
		}
		scenario.Steps = append(scenario.Steps, report.Step{
			ID:      fmt.Sprintf("%s-step-%d", id, i+1),
			Label:   step.Name,
			Keyword: strings.TrimSpace(step.Keyword),
			Status:  report.ParseStatus(strings.ToLower(strings.TrimSpace(step.Result.Status))),
			Body:    body,
			Error:   strings.TrimSpace(step.Result.ErrorMessage),
		}.WithAbbreviatedLabel(maxWidth))
	}
	return scenario
}

// mergeTags keeps feature tags first and drops duplicates.
func mergeTags(groups ...[]Tag) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, tag := range group {
			name := strings.TrimSpace(tag.Name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// cleanOutput strips non-JSON noise from godog output.
func cleanOutput(data []byte) []byte {
	stripped := bytes.TrimSpace(stripANSICodes(data))
	if len(stripped) == 0 || stripped[0] == '[' {
		return stripped
	}
	if i := bytes.IndexByte(stripped, '['); i >= 0 {
		return bytes.TrimSpace(stripped[i:])
	}
	return stripped
}

// stripANSICodes removes ANSI escape sequences from output.
func stripANSICodes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == 0x1b && i+1 < len(data) && data[i+1] == '[' {
			i += 2
			for i < len(data) {
				ch := data[i]
				i++
				if ch >= 0x40 && ch <= 0x7e {
					break
				}
			}
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}
