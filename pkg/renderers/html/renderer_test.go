package html_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-lsd/pkg/render"
	"github.com/goliatone/go-lsd/pkg/render/binding"
	rendertemplate "github.com/goliatone/go-lsd/pkg/render/template"
	"github.com/goliatone/go-lsd/pkg/render/template/gotemplate"
	"github.com/goliatone/go-lsd/pkg/renderers/html"
	"github.com/goliatone/go-lsd/pkg/report"
	"github.com/goliatone/go-lsd/pkg/testsupport"
)

func newRenderer(t *testing.T, options ...html.Option) *html.Renderer {
	t.Helper()

	renderer, err := html.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func customTemplates(report string) fstest.MapFS {
	return fstest.MapFS{
		"templates/html-report.tmpl": {Data: []byte(report)},
		"templates/html-index.tmpl":  {Data: []byte(`{{ .index.title }}`)},
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}

	registry := render.NewRegistry()
	if err := registry.Register(renderer); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !registry.Has(html.Name) {
		t.Fatalf("expected renderer to be registered")
	}
}

func TestRenderer_RenderSampleReport(t *testing.T) {
	out, err := newRenderer(t).Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"<title>Checkout</title>",
		`<ul class="lsd-summary lsd-summary--failed">`,
		`<li class="lsd-summary__total">2 scenarios</li>`,
		`<li class="lsd-summary__passed">1 passed</li>`,
		`<section class="lsd-scenario lsd-scenario--passed" id="scenario-1">`,
		`<section class="lsd-scenario lsd-scenario--failed" id="scenario-2">`,
		"<li>@payments</li>",
		"<strong>happy</strong>",
		"<dt>customer</dt>",
		"<dd>alice</dd>",
		`<span class="lsd-step__route">shop &rarr; gateway</span>`,
		`<code class="language-json">{&#34;amount&#34;: 42}</code>`,
		`<li class="lsd-step lsd-step--skipped" id="step-6">`,
		"--lsd-passed: #2e7d32;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<no>") {
		t.Fatalf("step error must be sanitised:\n%s", out)
	}
}

func TestRenderer_SequenceDiagramAndParticipants(t *testing.T) {
	out, err := newRenderer(t).Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`<li class="lsd-participant lsd-participant--actor" title="customer">Customer</li>`,
		`<li class="lsd-participant lsd-participant--boundary" title="gateway">gateway</li>`,
		`<pre class="lsd-diagram lsd-diagram--plantuml">@startuml`,
		`actor &#34;Customer&#34; as customer`,
		`customer -&gt; shop : a basket with 3 items`,
		`shop -&gt; gateway : the customer pays`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := strings.Count(out, `<figure class="lsd-scenario__diagram">`); got != 1 {
		t.Fatalf("expected a diagram for the routed scenario only, got %d", got)
	}
}

func TestRenderer_RenderIsDeterministic(t *testing.T) {
	renderer := newRenderer(t)
	rep := testsupport.SampleReport()

	first, err := renderer.Render(rep)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := renderer.Render(rep)
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if diff := testsupport.CompareGolden(first, again); diff != "" {
			t.Fatalf("render %d differs (-first +again):\n%s", i, diff)
		}
	}

	other := newRenderer(t)
	fresh, err := other.Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if fresh != first {
		t.Fatalf("independent renderers disagree")
	}
}

func TestRenderer_DoesNotMutateReport(t *testing.T) {
	rep := testsupport.SampleReport()
	if _, err := newRenderer(t).Render(rep); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := testsupport.CompareGolden(testsupport.SampleReport().Title, rep.Title); diff != "" {
		t.Fatalf("title changed: %s", diff)
	}
	if len(rep.Scenarios) != 2 || len(rep.Scenarios[0].Steps) != 3 {
		t.Fatalf("report structure changed: %+v", rep)
	}
}

func TestRenderer_SanitisationIsOptIn(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(customTemplates(
		`[{{ sanitise .report.title }}][{{ .report.title }}]`,
	)))

	out, err := renderer.Render(&report.Report{Title: `<script>alert(1)</script>Hi & bye`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `[Hi &amp; bye][<script>alert(1)</script>Hi & bye]`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderer_SanitiseIsIdempotentOnPlainText(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(customTemplates(`{{ sanitise .report.title }}`)))

	out, err := renderer.Render(&report.Report{Title: "Plain title 42"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Plain title 42" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderer_ResolverFallbacks(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(customTemplates(
		`{{ range .report.scenarios }}{{ .status }}|{{ range .facts }}{{ .key }}={{ .value }};{{ end }}|{{ range .steps }}{{ .language }},{{ end }}{{ end }}|{{ .report.summary.outcome }}|{{ .report.summary.successful }}`,
	)))

	out, err := renderer.Render(&report.Report{
		Title: "fallbacks",
		Scenarios: []report.Scenario{{
			Title: "one",
			Facts: []report.Fact{report.NewFact("k", "v")},
			Steps: []report.Step{
				{Label: "a", Status: report.StatusPassed, Body: `{"ok": true}`},
				{Label: "b", Status: report.StatusPassed},
			},
		}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "passed|k=v;|json,,|passed|true"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderer_StructuralFidelity(t *testing.T) {
	rep := &report.Report{Title: "order"}
	for i := 0; i < 4; i++ {
		scenario := report.Scenario{ID: "s" + string(rune('a'+i)), Title: "scenario " + string(rune('A'+i))}
		for j := 0; j < i+1; j++ {
			scenario.Steps = append(scenario.Steps, report.Step{
				ID:     scenario.ID + "-" + string(rune('0'+j)),
				Label:  "step",
				Status: report.StatusPassed,
			})
		}
		rep.Scenarios = append(rep.Scenarios, scenario)
	}

	out, err := newRenderer(t).Render(rep)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := strings.Count(out, `<section class="lsd-scenario `); got != 4 {
		t.Fatalf("expected 4 scenario fragments, got %d", got)
	}
	if got := strings.Count(out, `<li class="lsd-step `); got != 10 {
		t.Fatalf("expected 10 step fragments, got %d", got)
	}

	last := -1
	for _, title := range []string{"scenario A", "scenario B", "scenario C", "scenario D"} {
		idx := strings.Index(out, title)
		if idx <= last {
			t.Fatalf("%q out of order", title)
		}
		last = idx
	}
}

func TestRenderer_EmptyReport(t *testing.T) {
	out, err := newRenderer(t).Render(&report.Report{Title: "empty"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, `<section class="lsd-scenario `) {
		t.Fatalf("expected no scenario fragments:\n%s", out)
	}
	if !strings.Contains(out, `<li class="lsd-summary__total">0 scenarios</li>`) {
		t.Fatalf("expected zero summary:\n%s", out)
	}
}

func TestNew_MissingTemplateIsCompilationError(t *testing.T) {
	renderer, err := html.New(html.WithTemplatesFS(fstest.MapFS{
		"templates/html-index.tmpl": {Data: []byte(`index`)},
	}))
	if renderer != nil {
		t.Fatalf("expected nil renderer")
	}
	if !errors.Is(err, render.ErrTemplateCompilation) {
		t.Fatalf("expected compilation error, got %v", err)
	}
	var compileErr *render.CompilationError
	if !errors.As(err, &compileErr) || compileErr.Location != html.ReportTemplate {
		t.Fatalf("expected location %q, got %v", html.ReportTemplate, err)
	}
}

func TestNew_MalformedTemplateIsCompilationError(t *testing.T) {
	renderer, err := html.New(html.WithTemplatesFS(customTemplates(`{{ if .report.title }}`)))
	if renderer != nil || !errors.Is(err, render.ErrTemplateCompilation) {
		t.Fatalf("expected compilation error and nil renderer, got %v / %v", renderer, err)
	}
}

func TestRender_UnresolvableNameFails(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(customTemplates(`before {{ .report.author }} after`)))

	out, err := renderer.Render(testsupport.SampleReport())
	if !errors.Is(err, render.ErrTemplateEvaluation) {
		t.Fatalf("expected evaluation error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no partial output, got %q", out)
	}
}

func TestRender_HelperArgumentMismatchFails(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(customTemplates(`{{ sanitise .report.scenarios }}`)))

	_, err := renderer.Render(testsupport.SampleReport())
	if !errors.Is(err, render.ErrTemplateEvaluation) {
		t.Fatalf("expected evaluation error, got %v", err)
	}
}

func TestRender_NilReportFails(t *testing.T) {
	out, err := newRenderer(t).Render(nil)
	if !errors.Is(err, render.ErrTemplateEvaluation) || out != "" {
		t.Fatalf("expected evaluation error, got %q / %v", out, err)
	}
}

var errResolver = errors.New("resolver exploded")

// erroringResolver claims an "audit" name on every struct and fails reading it.
type erroringResolver struct{}

func (erroringResolver) Names(v reflect.Value) []string {
	if reflect.Indirect(v).Kind() != reflect.Struct {
		return nil
	}
	return []string{"audit"}
}

func (erroringResolver) Resolve(_ reflect.Value, name string) (any, bool, error) {
	if name != "audit" {
		return nil, false, nil
	}
	return nil, false, errResolver
}

func TestRender_BindingFailuresAreEvaluationErrors(t *testing.T) {
	renderer := newRenderer(t,
		html.WithTemplatesFS(customTemplates(`{{ range .report.scenarios }}{{ .audit }}{{ end }}`)),
		html.WithResolvers(binding.MapResolver{}, binding.StructFieldResolver{}, erroringResolver{}),
	)

	_, err := renderer.Render(testsupport.SampleReport())
	if !errors.Is(err, render.ErrTemplateEvaluation) {
		t.Fatalf("expected evaluation error, got %v", err)
	}
	if !errors.Is(err, errResolver) {
		t.Fatalf("expected resolver error in chain, got %v", err)
	}
}

func TestRender_UnreadNamesAreNotResolved(t *testing.T) {
	renderer := newRenderer(t,
		html.WithTemplatesFS(customTemplates(`{{ range .report.scenarios }}{{ .title }};{{ end }}`)),
		html.WithResolvers(binding.MapResolver{}, binding.StructFieldResolver{}, erroringResolver{}),
	)

	out, err := renderer.Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("names the template never reads must not be resolved: %v", err)
	}
	if out != "Customer pays by card;Card is declined;" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStepPartial_LanguageClassIsSlugged(t *testing.T) {
	engine, err := gotemplate.New(
		gotemplate.WithFS(html.TemplatesFS()),
		gotemplate.WithPartials(html.PartialsPattern),
		gotemplate.WithHelpers(rendertemplate.Helpers{
			"markdown":    func(any) (string, error) { return "", nil },
			"themeTokens": func() []html.ThemeToken { return nil },
			"stylesheet":  func() string { return "" },
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	tmpl, err := engine.Compile("templates/partials/step")
	if err != nil {
		t.Fatalf("compile step partial: %v", err)
	}

	cases := map[string]string{
		"Graphviz (DOT)": `<code class="language-graphviz-dot">`,
		"JSON":           `<code class="language-json">`,
		"C++":            `<code class="language-c">`,
		"":               `<code class="language-">`,
	}
	for language, want := range cases {
		out, err := tmpl.Execute(map[string]any{
			"id": "s1", "status": "passed", "keyword": "", "label": "call", "detail": "",
			"from": "", "to": "", "body": "digraph {}", "error": "", "language": language,
		})
		if err != nil {
			t.Fatalf("execute %q: %v", language, err)
		}
		if !strings.Contains(out, want) {
			t.Fatalf("language %q: expected %s in:\n%s", language, want, out)
		}
	}
}

func TestRenderer_RenderIndex(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.RenderIndex(report.Index{
		Title: "Run <1>",
		Entries: []report.IndexEntry{
			{Title: "Checkout", File: "checkout.html", Summary: testsupport.SampleReport().Summary()},
			{Title: "Login", File: "login.html", Summary: report.Summary{Total: 1, Passed: 1}},
		},
	})
	if err != nil {
		t.Fatalf("render index: %v", err)
	}

	for _, want := range []string{
		`<a href="checkout.html">Checkout</a>`,
		`<a href="login.html">Login</a>`,
		`lsd-index__entry--failed`,
		`lsd-index__entry--passed`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Index(out, "checkout.html") > strings.Index(out, "login.html") {
		t.Fatalf("entries out of order")
	}
	if strings.Contains(out, "<1>") {
		t.Fatalf("index title must be sanitised")
	}
}

func TestRenderer_ThemeTokens(t *testing.T) {
	renderer := newRenderer(t, html.WithTheme(&theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":         "#123456",
			"surface.muted": "#fafafa",
			"evil":          "red; } body { display: none",
		},
	}))

	out, err := renderer.Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "--lsd-brand: #123456;\n  --lsd-surface-muted: #fafafa;") {
		t.Fatalf("expected sorted theme tokens:\n%s", out)
	}
	if strings.Contains(out, "display: none") {
		t.Fatalf("unsafe token value must be dropped")
	}
}

func TestRenderer_WithStylesheet(t *testing.T) {
	out, err := newRenderer(t, html.WithStylesheet(".custom { color: red; }")).Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, ".custom { color: red; }") || strings.Contains(out, "--lsd-passed") {
		t.Fatalf("expected custom stylesheet only")
	}
}

func TestRenderer_WithTemplatesDirOverridesPartial(t *testing.T) {
	dir := t.TempDir()
	partials := filepath.Join(dir, "templates", "partials")
	if err := os.MkdirAll(partials, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(partials, "step.tmpl"), []byte(`<li class="custom-step">{{ sanitise .label }}</li>`), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}

	out, err := newRenderer(t, html.WithTemplatesDir(dir)).Render(testsupport.SampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(out, `<li class="custom-step">`); got != 6 {
		t.Fatalf("expected 6 overridden steps, got %d", got)
	}
}

func TestRenderer_ConcurrentRender(t *testing.T) {
	renderer := newRenderer(t)
	rep := testsupport.SampleReport()
	want, err := renderer.Render(rep)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := renderer.Render(rep)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("concurrent render differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestRenderer_JSONFixtureMatchesSampleReport(t *testing.T) {
	path := filepath.Join("testdata", "checkout.json")
	testsupport.WriteGolden(t, path, testsupport.SampleReport())
	fixture := testsupport.MustLoadReport(t, path)

	if diff := testsupport.CompareGolden(testsupport.SampleReport(), fixture); diff != "" {
		t.Fatalf("fixture drifted from the sample report (-want +got):\n%s", diff)
	}
}

func TestRenderer_Golden(t *testing.T) {
	renderer := newRenderer(t, html.WithTemplatesFS(os.DirFS("testdata")))
	fixture := testsupport.MustLoadReport(t, filepath.Join("testdata", "checkout.json"))

	out, err := renderer.Render(fixture)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	golden := filepath.Join("testdata", "checkout.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(out)) {
		return
	}
	if diff := testsupport.CompareGolden(string(testsupport.MustReadGolden(t, golden)), out); diff != "" {
		t.Fatalf("golden mismatch (-want +got):\n%s", diff)
	}
}
