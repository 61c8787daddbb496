package render

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateCompilation marks failures loading or parsing a template.
	// They happen at renderer construction and are fatal for that renderer.
	ErrTemplateCompilation = errors.New("template compilation failed")
	// ErrTemplateEvaluation marks failures applying a compiled template to a
	// report: unresolvable names, helper argument mismatches, resolver errors.
	ErrTemplateEvaluation = errors.New("template evaluation failed")
)

// CompilationError reports a template resource that is missing or malformed.
type CompilationError struct {
	Location string
	Err      error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrTemplateCompilation, e.Location, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Is matches ErrTemplateCompilation.
func (e *CompilationError) Is(target error) bool {
	return target == ErrTemplateCompilation
}

// EvaluationError reports a compiled template that could not be applied.
type EvaluationError struct {
	Template string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrTemplateEvaluation, e.Template, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Is matches ErrTemplateEvaluation.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrTemplateEvaluation
}

// NewEvaluationError wraps err unless it already is an evaluation error.
func NewEvaluationError(template string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if errors.As(err, &existing) {
		return err
	}
	return &EvaluationError{Template: template, Err: err}
}
