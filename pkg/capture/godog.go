package capture

import (
	"context"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"github.com/goliatone/go-lsd/pkg/report"
)

type scenarioKey struct{}

// godogScenario collects the steps of one running godog scenario. Scenarios
// may run concurrently, so each one keeps its own state in the context.
type godogScenario struct {
	mu       sync.Mutex
	scenario report.Scenario
	// index maps pickle step ids to positions in scenario.Steps.
	index map[string]int
}

// AttachGodog records every scenario of a godog suite into rec. Every step of
// the scenario is recorded as skipped up front and updated with its result
// when godog runs it, so steps godog never reaches stay in the report.
// Finished scenarios are added with their tags.
// Call it from a ScenarioInitializer; completing reports stays with the
// caller (typically in a TestSuiteInitializer AfterSuite hook).
func AttachGodog(sc *godog.ScenarioContext, rec *Recorder) {
	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		state := &godogScenario{
			scenario: report.Scenario{
				Title: strings.TrimSpace(scenario.Name),
				Tags:  pickleTags(scenario),
			},
			index: make(map[string]int, len(scenario.Steps)),
		}
		for _, step := range scenario.Steps {
			if step == nil {
				continue
			}
			state.index[step.Id] = len(state.scenario.Steps)
			state.scenario.Steps = append(state.scenario.Steps, pickleStep(step))
		}
		return context.WithValue(ctx, scenarioKey{}, state), nil
	})

	sc.StepContext().After(func(ctx context.Context, step *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
		state, ok := ctx.Value(scenarioKey{}).(*godogScenario)
		if !ok {
			return ctx, nil
		}
		if step == nil {
			return ctx, nil
		}
		recorded := pickleStep(step)
		recorded.Status = stepStatus(status)
		if err != nil && status != godog.StepPassed {
			recorded.Error = err.Error()
		}

		state.mu.Lock()
		if i, known := state.index[step.Id]; known {
			state.scenario.Steps[i] = recorded
		} else {
			state.scenario.Steps = append(state.scenario.Steps, recorded)
		}
		state.mu.Unlock()
		return ctx, nil
	})

	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		state, ok := ctx.Value(scenarioKey{}).(*godogScenario)
		if !ok {
			return ctx, nil
		}
		state.mu.Lock()
		scenario := state.scenario
		scenario.Steps = append([]report.Step(nil), state.scenario.Steps...)
		state.mu.Unlock()

		if err != nil && allPassed(scenario.Steps) {
			scenario.Error = err.Error()
		}
		rec.AddScenario(scenario)
		return ctx, nil
	})
}

// pickleStep converts a godog step into a skipped report step.
func pickleStep(step *godog.Step) report.Step {
	recorded := report.Step{
		Label:  strings.TrimSpace(step.Text),
		Status: report.StatusSkipped,
	}
	if step.Argument != nil && step.Argument.DocString != nil {
		recorded.Body = step.Argument.DocString.Content
	}
	return recorded
}

func pickleTags(scenario *godog.Scenario) []string {
	if scenario == nil {
		return nil
	}
	var tags []string
	for _, tag := range scenario.Tags {
		if tag != nil && tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}
	return tags
}

func stepStatus(status godog.StepResultStatus) report.Status {
	switch status {
	case godog.StepPassed:
		return report.StatusPassed
	case godog.StepFailed:
		return report.StatusFailed
	case godog.StepPending:
		return report.StatusPending
	case godog.StepUndefined:
		return report.StatusUndefined
	case godog.StepAmbiguous:
		return report.StatusAmbiguous
	default:
		return report.StatusSkipped
	}
}

// allPassed reports whether a scenario error came from a hook rather than
// from one of its steps.
func allPassed(steps []report.Step) bool {
	for _, step := range steps {
		if step.Status != report.StatusPassed {
			return false
		}
	}
	return true
}
