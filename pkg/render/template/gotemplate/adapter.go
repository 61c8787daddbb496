package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"reflect"
	"sort"
	"strings"
	texttemplate "text/template"
	"unicode"

	"github.com/Masterminds/sprig/v3"

	"github.com/goliatone/go-lsd/pkg/render"
	rendertemplate "github.com/goliatone/go-lsd/pkg/render/template"
	"github.com/goliatone/go-lsd/pkg/sanitise"
)

// SanitiseHelper is the helper every compiled template can call to clean
// untrusted text: {{ sanitise .report.title }}.
const SanitiseHelper = "sanitise"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir     string
	templates   fs.FS
	extension   string
	helpers     rendertemplate.Helpers
	partials    []string
	skipLibrary bool
}

// WithBaseDir loads templates from a directory on disk. When combined with
// WithFS, files in the directory shadow files in the fs.FS.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension (".tmpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithHelpers registers helper functions for every template the engine
// compiles. The sanitise helper cannot be replaced.
func WithHelpers(helpers rendertemplate.Helpers) Option {
	return func(cfg *config) {
		if len(helpers) == 0 {
			return
		}
		if cfg.helpers == nil {
			cfg.helpers = make(rendertemplate.Helpers, len(helpers))
		}
		for name, fn := range helpers {
			cfg.helpers[strings.TrimSpace(name)] = fn
		}
	}
}

// WithPartials parses every file matching the glob patterns into each
// compiled template. A partial is invoked by its base name without the
// extension: templates/partials/step.tmpl becomes {{ template "step" . }}.
func WithPartials(patterns ...string) Option {
	return func(cfg *config) {
		for _, pattern := range patterns {
			if trimmed := strings.TrimSpace(pattern); trimmed != "" {
				cfg.partials = append(cfg.partials, trimmed)
			}
		}
	}
}

// WithoutHelperLibrary drops the sprig helper vocabulary, leaving only the
// text/template builtins, sanitise and the registered helpers.
func WithoutHelperLibrary() Option {
	return func(cfg *config) {
		cfg.skipLibrary = true
	}
}

// Engine compiles text/template sources. Compiled templates fail on any
// name missing from the data instead of printing a placeholder.
type Engine struct {
	files     fs.FS
	extension string
	funcs     texttemplate.FuncMap
	partials  []string
}

var _ rendertemplate.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tmpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var layers []fs.FS
	if cfg.baseDir != "" {
		info, err := os.Stat(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: base dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("gotemplate: base dir %q is not a directory", cfg.baseDir)
		}
		layers = append(layers, os.DirFS(cfg.baseDir))
	}
	if cfg.templates != nil {
		layers = append(layers, cfg.templates)
	}

	funcs := texttemplate.FuncMap{}
	if !cfg.skipLibrary {
		for name, fn := range sprig.HermeticTxtFuncMap() {
			funcs[name] = fn
		}
	}
	for name, fn := range cfg.helpers {
		if err := validateHelper(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register helper %q: %w", name, err)
		}
		funcs[name] = fn
	}
	funcs[SanitiseHelper] = sanitise.Text

	return &Engine{
		files:     newLayeredFS(layers...),
		extension: cfg.extension,
		funcs:     funcs,
		partials:  cfg.partials,
	}, nil
}

// Compile loads location (the extension is optional), parses it together
// with the configured partials and returns the compiled template. Missing or
// malformed sources fail with *render.CompilationError.
func (e *Engine) Compile(location string) (rendertemplate.Template, error) {
	if e == nil || e.files == nil {
		return nil, &render.CompilationError{Location: location, Err: errors.New("gotemplate: engine is nil")}
	}

	name := strings.TrimSpace(location)
	if name == "" {
		return nil, &render.CompilationError{Location: location, Err: errors.New("gotemplate: template location is required")}
	}
	name = strings.TrimSuffix(name, e.extension)
	templatePath := name + e.extension

	source, err := fs.ReadFile(e.files, templatePath)
	if err != nil {
		return nil, &render.CompilationError{
			Location: name,
			Err:      fmt.Errorf("gotemplate: load template %q: %w", templatePath, err),
		}
	}

	root := texttemplate.New(name).Option("missingkey=error").Funcs(e.funcs)
	if _, err := root.Parse(string(source)); err != nil {
		return nil, &render.CompilationError{
			Location: name,
			Err:      fmt.Errorf("gotemplate: parse template %q: %w", templatePath, err),
		}
	}

	if err := e.parsePartials(root, templatePath); err != nil {
		return nil, &render.CompilationError{Location: name, Err: err}
	}

	return &Template{name: name, tmpl: root, refs: references(root)}, nil
}

func (e *Engine) parsePartials(root *texttemplate.Template, templatePath string) error {
	for _, pattern := range e.partials {
		matches, err := fs.Glob(e.files, pattern)
		if err != nil {
			return fmt.Errorf("gotemplate: partial pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if match == templatePath {
				continue
			}
			source, err := fs.ReadFile(e.files, match)
			if err != nil {
				return fmt.Errorf("gotemplate: load partial %q: %w", match, err)
			}
			partialName := strings.TrimSuffix(path.Base(match), e.extension)
			if _, err := root.New(partialName).Parse(string(source)); err != nil {
				return fmt.Errorf("gotemplate: parse partial %q: %w", match, err)
			}
		}
	}
	return nil
}

// Template is a compiled text/template.
type Template struct {
	name string
	tmpl *texttemplate.Template
	refs []string
}

var (
	_ rendertemplate.Template   = (*Template)(nil)
	_ rendertemplate.Referencer = (*Template)(nil)
)

// Name returns the logical location the template was compiled from.
func (t *Template) Name() string {
	return t.name
}

// References lists the field names the template and its partials read,
// sorted.
func (t *Template) References() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.refs...)
}

// Execute applies the template. Evaluation failures are returned as
// *render.EvaluationError and nothing is written to out.
func (t *Template) Execute(data any, out ...io.Writer) (string, error) {
	if t == nil || t.tmpl == nil {
		return "", render.NewEvaluationError("", errors.New("gotemplate: template is nil"))
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", render.NewEvaluationError(t.name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("gotemplate: write output: %w", err)
		}
	}
	return rendered, nil
}

// validateHelper mirrors text/template's own rules so a bad helper surfaces
// as an error instead of a panic inside Funcs.
func validateHelper(name string, fn any) error {
	if name == "" {
		return errors.New("helper name is required")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return errors.New("helper name is not a valid identifier")
	}
	if fn == nil {
		return errors.New("helper function is nil")
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("helper is a %s, not a function", ft.Kind())
	}
	switch {
	case ft.NumOut() == 1:
		return nil
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		return nil
	default:
		return errors.New("helper must return one value, optionally followed by an error")
	}
}
