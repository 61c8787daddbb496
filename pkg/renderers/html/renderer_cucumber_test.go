//go:build cucumber

package html_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cucumber/godog"

	"github.com/goliatone/go-lsd/pkg/render"
	"github.com/goliatone/go-lsd/pkg/renderers/html"
	"github.com/goliatone/go-lsd/pkg/report"
)

// TestHTMLReportScenarios runs the HTML renderer feature scenarios.
func TestHTMLReportScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "html-report",
		ScenarioInitializer: InitializeHTMLReportScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "html-report.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeHTMLReportScenario wires steps for the HTML renderer features.
func InitializeHTMLReportScenario(ctx *godog.ScenarioContext) {
	state := &htmlScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a report titled "([^"]*)" with (\d+) scenarios of (\d+) steps each$`, state.givenReport)
	ctx.Step(`^the first step is labelled "([^"]*)"$`, state.givenFirstStepLabel)
	ctx.Step(`^a report template "([^"]*)"$`, state.givenReportTemplate)
	ctx.Step(`^a template bundle without the report page$`, state.givenBundleWithoutReport)
	ctx.Step(`^I render the report$`, state.whenIRender)
	ctx.Step(`^I render the report twice$`, state.whenIRenderTwice)
	ctx.Step(`^I build the renderer$`, state.whenIBuildTheRenderer)
	ctx.Step(`^the output contains (\d+) "((?:[^"\\]|\\.)*)" fragments$`, state.thenFragmentCount)
	ctx.Step(`^the output contains "([^"]*)"$`, state.thenOutputContains)
	ctx.Step(`^the output does not contain "([^"]*)"$`, state.thenOutputDoesNotContain)
	ctx.Step(`^both outputs are identical$`, state.thenOutputsIdentical)
	ctx.Step(`^rendering fails with an evaluation error$`, state.thenEvaluationError)
	ctx.Step(`^no output is produced$`, state.thenNoOutput)
	ctx.Step(`^construction fails with a compilation error$`, state.thenCompilationError)
}

// htmlScenarioState holds scenario state for HTML renderer feature tests.
type htmlScenarioState struct {
	report    *report.Report
	templates fstest.MapFS
	outputs   []string
	err       error
}

func (s *htmlScenarioState) reset() {
	s.report = nil
	s.templates = nil
	s.outputs = nil
	s.err = nil
}

func (s *htmlScenarioState) givenReport(title string, scenarios, steps int) error {
	s.report = &report.Report{Title: title}
	for i := 0; i < scenarios; i++ {
		scenario := report.Scenario{
			ID:    fmt.Sprintf("scenario-%d", i+1),
			Title: fmt.Sprintf("Scenario %d", i+1),
		}
		for j := 0; j < steps; j++ {
			scenario.Steps = append(scenario.Steps, report.Step{
				ID:     fmt.Sprintf("step-%d-%d", i+1, j+1),
				Label:  fmt.Sprintf("step %d", j+1),
				Status: report.StatusPassed,
			})
		}
		s.report.Scenarios = append(s.report.Scenarios, scenario)
	}
	return nil
}

func (s *htmlScenarioState) givenFirstStepLabel(label string) error {
	if s.report == nil || len(s.report.Scenarios) == 0 || len(s.report.Scenarios[0].Steps) == 0 {
		return fmt.Errorf("report has no steps")
	}
	s.report.Scenarios[0].Steps[0].Label = label
	return nil
}

func (s *htmlScenarioState) givenReportTemplate(source string) error {
	s.templates = fstest.MapFS{
		"templates/html-report.tmpl": {Data: []byte(source)},
		"templates/html-index.tmpl":  {Data: []byte(`{{ .index.title }}`)},
	}
	return nil
}

func (s *htmlScenarioState) givenBundleWithoutReport() error {
	s.templates = fstest.MapFS{
		"templates/html-index.tmpl": {Data: []byte(`{{ .index.title }}`)},
	}
	return nil
}

func (s *htmlScenarioState) renderer() (*html.Renderer, error) {
	if s.templates != nil {
		return html.New(html.WithTemplatesFS(s.templates))
	}
	return html.New()
}

func (s *htmlScenarioState) whenIRender() error {
	renderer, err := s.renderer()
	if err != nil {
		return err
	}
	out, err := renderer.Render(s.report)
	s.err = err
	s.outputs = append(s.outputs, out)
	return nil
}

func (s *htmlScenarioState) whenIRenderTwice() error {
	if err := s.whenIRender(); err != nil {
		return err
	}
	return s.whenIRender()
}

func (s *htmlScenarioState) whenIBuildTheRenderer() error {
	renderer, err := s.renderer()
	if renderer != nil {
		return fmt.Errorf("expected no renderer")
	}
	s.err = err
	return nil
}

func (s *htmlScenarioState) output() (string, error) {
	if len(s.outputs) == 0 {
		return "", fmt.Errorf("nothing rendered")
	}
	if s.err != nil {
		return "", fmt.Errorf("render failed: %w", s.err)
	}
	return s.outputs[len(s.outputs)-1], nil
}

func (s *htmlScenarioState) thenFragmentCount(expected int, fragment string) error {
	out, err := s.output()
	if err != nil {
		return err
	}
	fragment = strings.ReplaceAll(fragment, `\"`, `"`)
	if got := strings.Count(out, fragment); got != expected {
		return fmt.Errorf("expected %d %q fragments, got %d", expected, fragment, got)
	}
	return nil
}

func (s *htmlScenarioState) thenOutputContains(fragment string) error {
	out, err := s.output()
	if err != nil {
		return err
	}
	if !strings.Contains(out, fragment) {
		return fmt.Errorf("expected output to contain %q", fragment)
	}
	return nil
}

func (s *htmlScenarioState) thenOutputDoesNotContain(fragment string) error {
	out, err := s.output()
	if err != nil {
		return err
	}
	if strings.Contains(out, fragment) {
		return fmt.Errorf("expected output not to contain %q", fragment)
	}
	return nil
}

func (s *htmlScenarioState) thenOutputsIdentical() error {
	if len(s.outputs) != 2 {
		return fmt.Errorf("expected two outputs, got %d", len(s.outputs))
	}
	if s.outputs[0] != s.outputs[1] {
		return fmt.Errorf("outputs differ")
	}
	return nil
}

func (s *htmlScenarioState) thenEvaluationError() error {
	if !errors.Is(s.err, render.ErrTemplateEvaluation) {
		return fmt.Errorf("expected evaluation error, got %v", s.err)
	}
	return nil
}

func (s *htmlScenarioState) thenNoOutput() error {
	if len(s.outputs) == 0 || s.outputs[len(s.outputs)-1] != "" {
		return fmt.Errorf("expected empty output")
	}
	return nil
}

func (s *htmlScenarioState) thenCompilationError() error {
	if !errors.Is(s.err, render.ErrTemplateCompilation) {
		return fmt.Errorf("expected compilation error, got %v", s.err)
	}
	return nil
}
