package template

import (
	"io"
)

// Engine compiles named template resources. Implementations resolve the
// location through their own resource loader (an fs.FS, a directory).
type Engine interface {
	Compile(location string) (Template, error)
}

// Template is a compiled, immutable template. Execute does not mutate the
// template and may be called concurrently.
type Template interface {
	Name() string
	// Execute applies the template to data. The complete output is returned
	// and, on success only, written to every out writer.
	Execute(data any, out ...io.Writer) (string, error)
}

// Referencer is implemented by templates that know which field names they
// read. Renderers bind only those names so unused computed values are never
// evaluated.
type Referencer interface {
	References() []string
}

// Helpers maps helper names to the functions templates can invoke.
type Helpers map[string]any
