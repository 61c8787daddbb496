// Package writer renders reports to files under the configured output
// directory: one page per report plus an index page for the run.
package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/goliatone/go-lsd/internal/logging"
	"github.com/goliatone/go-lsd/pkg/config"
	"github.com/goliatone/go-lsd/pkg/render"
	"github.com/goliatone/go-lsd/pkg/report"
)

// IndexFile is the file name of the index page.
const IndexFile = "index.html"

// Writer renders reports into Dir. Reports whose titles share a slug get
// numbered file names (checkout.html, checkout-2.html) for the lifetime of
// the writer; files left by earlier runs are overwritten.
type Writer struct {
	dir      string
	renderer render.Renderer

	mu   sync.Mutex
	used map[string]struct{}
}

// New creates a writer for dir. The renderer must also implement
// render.IndexRenderer for WriteIndex to work.
func New(dir string, renderer render.Renderer) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("writer: output directory is required")
	}
	if renderer == nil {
		return nil, errors.New("writer: renderer is required")
	}
	return &Writer{dir: dir, renderer: renderer, used: make(map[string]struct{})}, nil
}

// FromProperties creates a writer for the lsd.dist.dir property.
func FromProperties(props *config.Properties, renderer render.Renderer) (*Writer, error) {
	dir := props.Get(config.KeyDistDir)
	if dir == "" {
		dir = config.DefaultDistDir
	}
	return New(dir, renderer)
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteReport renders r into <dir>/<slug>.html and returns the index entry
// describing the written file.
func (w *Writer) WriteReport(ctx context.Context, r *report.Report) (report.IndexEntry, error) {
	if r == nil {
		return report.IndexEntry{}, errors.New("writer: report is nil")
	}

	output, err := w.renderer.Render(r)
	if err != nil {
		return report.IndexEntry{}, fmt.Errorf("writer: render %q: %w", r.Title, err)
	}

	file := w.reserve(Slug(r.Title))
	path, err := w.write(file, output)
	if err != nil {
		w.release(file)
		return report.IndexEntry{}, err
	}

	summary := r.Summary()
	logging.FromContext(ctx).Info("report written",
		logging.FieldReport, r.Title,
		logging.FieldPath, path,
		logging.FieldScenarios, summary.Total,
		logging.FieldStatus, summary.Outcome(),
	)

	return report.IndexEntry{Title: r.Title, File: file, Summary: summary}, nil
}

// WriteIndex renders idx into <dir>/index.html and returns the written path.
func (w *Writer) WriteIndex(ctx context.Context, idx report.Index) (string, error) {
	indexRenderer, ok := w.renderer.(render.IndexRenderer)
	if !ok {
		return "", fmt.Errorf("writer: renderer %q cannot render an index", w.renderer.Name())
	}

	output, err := indexRenderer.RenderIndex(idx)
	if err != nil {
		return "", fmt.Errorf("writer: render index: %w", err)
	}

	path, err := w.write(IndexFile, output)
	if err != nil {
		return "", err
	}
	logging.FromContext(ctx).Info("index written", logging.FieldPath, path, "entries", len(idx.Entries))
	return path, nil
}

// reserve claims the first free file name for slug.
func (w *Writer) reserve(slug string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	file := slug + ".html"
	for n := 2; ; n++ {
		if _, taken := w.used[file]; !taken {
			break
		}
		file = slug + "-" + strconv.Itoa(n) + ".html"
	}
	w.used[file] = struct{}{}
	return file
}

func (w *Writer) release(file string) {
	w.mu.Lock()
	delete(w.used, file)
	w.mu.Unlock()
}

func (w *Writer) write(file, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("writer: create output dir: %w", err)
	}
	path := filepath.Join(w.dir, file)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writer: write %s: %w", path, err)
	}
	return path, nil
}

// Slug lower-cases title and joins its letters and digits with dashes.
// Titles without any letter or digit become "report"; "index" is reserved
// for the index page.
func Slug(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	switch slug {
	case "":
		return "report"
	case "index":
		return "index-report"
	default:
		return slug
	}
}
