package html

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-lsd/pkg/render"
	"github.com/goliatone/go-lsd/pkg/render/binding"
	rendertemplate "github.com/goliatone/go-lsd/pkg/render/template"
	"github.com/goliatone/go-lsd/pkg/render/template/gotemplate"
	"github.com/goliatone/go-lsd/pkg/report"
	"github.com/goliatone/go-lsd/pkg/sanitise"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS  fs.FS
	templateDir string
	theme       *theme.Manifest
	stylesheet  *string
	helpers     rendertemplate.Helpers
	chain       binding.Chain
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide both pages and the partials they call.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk. Files found in
// the directory shadow the embedded bundle, so a directory may override a
// single partial.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTheme exposes the manifest tokens to templates as CSS custom
// properties through the themeTokens helper.
func WithTheme(manifest *theme.Manifest) Option {
	return func(cfg *config) {
		cfg.theme = manifest
	}
}

// WithStylesheet replaces the embedded stylesheet inlined into every page.
// An empty string drops it.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// WithHelpers registers extra template helpers.
func WithHelpers(helpers rendertemplate.Helpers) Option {
	return func(cfg *config) {
		if len(helpers) == 0 {
			return
		}
		if cfg.helpers == nil {
			cfg.helpers = make(rendertemplate.Helpers, len(helpers))
		}
		for name, fn := range helpers {
			cfg.helpers[name] = fn
		}
	}
}

// WithResolvers overrides the resolver chain used to bind reports.
func WithResolvers(resolvers ...binding.FieldResolver) Option {
	return func(cfg *config) {
		if len(resolvers) > 0 {
			cfg.chain = binding.Chain(resolvers)
		}
	}
}

// Renderer renders reports and run indexes as standalone HTML pages. Both
// templates are compiled once by New; Render only evaluates them.
type Renderer struct {
	report rendertemplate.Template
	index  rendertemplate.Template
	chain  binding.Chain
}

var (
	_ render.Renderer      = (*Renderer)(nil)
	_ render.IndexRenderer = (*Renderer)(nil)
)

// New compiles the report and index templates. A missing or malformed
// template is fatal: New returns a nil renderer and a *render.CompilationError.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if len(cfg.chain) == 0 {
		cfg.chain = binding.DefaultChain()
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}

	helpers := rendertemplate.Helpers{}
	for name, fn := range cfg.helpers {
		helpers[name] = fn
	}
	helpers["markdown"] = sanitise.Markdown
	helpers["themeTokens"] = themeTokensHelper(cfg.theme)
	helpers["stylesheet"] = func() string { return stylesheet }

	engineOptions := []gotemplate.Option{
		gotemplate.WithFS(cfg.templateFS),
		gotemplate.WithExtension(".tmpl"),
		gotemplate.WithPartials(PartialsPattern),
		gotemplate.WithHelpers(helpers),
	}
	if cfg.templateDir != "" {
		engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templateDir))
	}

	engine, err := gotemplate.New(engineOptions...)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure template engine: %w", err)
	}

	reportTemplate, err := engine.Compile(ReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	indexTemplate, err := engine.Compile(IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	return &Renderer{
		report: reportTemplate,
		index:  indexTemplate,
		chain:  cfg.chain,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render binds rep under "report" and evaluates the report template. Any
// failure is a *render.EvaluationError and no partial output is returned.
func (r *Renderer) Render(rep *report.Report) (string, error) {
	if r == nil || r.report == nil {
		return "", errors.New("html renderer: renderer is not initialised")
	}
	if rep == nil {
		return "", render.NewEvaluationError(r.report.Name(), errors.New("html renderer: report is nil"))
	}
	return r.execute(r.report, "report", rep)
}

// RenderIndex binds idx under "index" and evaluates the index template.
func (r *Renderer) RenderIndex(idx report.Index) (string, error) {
	if r == nil || r.index == nil {
		return "", errors.New("html renderer: renderer is not initialised")
	}
	return r.execute(r.index, "index", idx)
}

func (r *Renderer) execute(tmpl rendertemplate.Template, root string, value any) (string, error) {
	var options []binding.Option
	if referencer, ok := tmpl.(rendertemplate.Referencer); ok {
		options = append(options, binding.OnlyNames(referencer.References()...))
	}
	ctx, err := binding.Bind(root, value, r.chain, options...)
	if err != nil {
		return "", fmt.Errorf("html renderer: %w", render.NewEvaluationError(tmpl.Name(), err))
	}

	out, err := tmpl.Execute(ctx.Data())
	if err != nil {
		return "", fmt.Errorf("html renderer: %w", err)
	}
	return out, nil
}
