package render

import (
	"github.com/goliatone/go-lsd/pkg/report"
)

// Renderer converts a report into one output document (HTML, text, ...).
// Implementations compile their template once at construction; Render only
// evaluates it, so the same report always yields the same output.
type Renderer interface {
	Name() string
	ContentType() string
	Render(r *report.Report) (string, error)
}

// IndexRenderer renders the list of reports written during a run.
type IndexRenderer interface {
	RenderIndex(idx report.Index) (string, error)
}
