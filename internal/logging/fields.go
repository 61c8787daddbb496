package logging

// Field names for structured log entries.
const (
	FieldError    = "error"
	FieldPath     = "path"
	FieldDir      = "dir"
	FieldInput    = "input"
	FieldFormat   = "format"
	FieldRenderer = "renderer"
	FieldTemplate = "template"
	FieldKey      = "key"
	FieldValue    = "value"

	FieldReport    = "report"
	FieldScenario  = "scenario"
	FieldScenarios = "scenarios"
	FieldSteps     = "steps"
	FieldStatus    = "status"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
