// Package diagram draws the interactions captured in a scenario as PlantUML
// sequence diagrams.
package diagram

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-lsd/pkg/report"
)

var simpleName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Sequence returns the PlantUML source of a sequence diagram for steps. Every
// participant is declared in order, includes become !include lines and each
// step with both From and To becomes an arrow labelled with its Label. Steps
// without a route are left out. The result is "" when no step has a route.
func Sequence(participants []report.Participant, includes []string, steps []report.Step) string {
	var arrows []report.Step
	for _, step := range steps {
		if strings.TrimSpace(step.From) != "" && strings.TrimSpace(step.To) != "" {
			arrows = append(arrows, step)
		}
	}
	if len(arrows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("@startuml\n")
	for _, include := range includes {
		if include = strings.TrimSpace(include); include != "" {
			b.WriteString("!include " + include + "\n")
		}
	}

	codes := make(map[string]string, len(participants))
	for i, p := range participants {
		if p.Name == "" {
			continue
		}
		code := reference(p.Name)
		switch {
		case p.Alias == "":
			b.WriteString(string(p.Kind()) + " " + code + "\n")
		case simpleName.MatchString(p.Name):
			b.WriteString(string(p.Kind()) + " " + quote(p.Alias) + " as " + p.Name + "\n")
		default:
			code = "p" + strconv.Itoa(i+1)
			b.WriteString(string(p.Kind()) + " " + quote(p.Alias) + " as " + code + "\n")
		}
		codes[p.Name] = code
	}

	for _, step := range arrows {
		from, to := participantCode(codes, step.From), participantCode(codes, step.To)
		b.WriteString(from + " " + arrow(step.Status) + " " + to)
		if label := escapeLabel(step.Label); label != "" {
			b.WriteString(" : " + label)
		}
		b.WriteString("\n")
	}
	b.WriteString("@enduml\n")
	return b.String()
}

func participantCode(codes map[string]string, name string) string {
	name = strings.TrimSpace(name)
	if code, ok := codes[name]; ok {
		return code
	}
	return reference(name)
}

func arrow(status report.Status) string {
	switch report.ParseStatus(string(status)) {
	case report.StatusFailed, report.StatusAmbiguous:
		return "-[#red]>"
	case report.StatusPassed:
		return "->"
	default:
		return "-[#gray]->"
	}
}

func reference(name string) string {
	if simpleName.MatchString(name) {
		return name
	}
	return quote(name)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}

func escapeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.ReplaceAll(label, "\r\n", "\n")
	return strings.ReplaceAll(label, "\n", `\n`)
}
