package render

import (
	"errors"
	"testing"
)

func TestCompilationError(t *testing.T) {
	cause := errors.New("file does not exist")
	err := error(&CompilationError{Location: "templates/html-report", Err: cause})

	if !errors.Is(err, ErrTemplateCompilation) {
		t.Fatalf("expected ErrTemplateCompilation match")
	}
	if errors.Is(err, ErrTemplateEvaluation) {
		t.Fatalf("compilation error must not match evaluation")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	want := `template compilation failed: "templates/html-report": file does not exist`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestNewEvaluationError(t *testing.T) {
	if NewEvaluationError("t", nil) != nil {
		t.Fatalf("nil cause must stay nil")
	}

	cause := errors.New("map has no entry for key \"nope\"")
	err := NewEvaluationError("html-report", cause)
	if !errors.Is(err, ErrTemplateEvaluation) || !errors.Is(err, cause) {
		t.Fatalf("expected evaluation error wrapping cause, got %v", err)
	}

	again := NewEvaluationError("outer", err)
	var evalErr *EvaluationError
	if !errors.As(again, &evalErr) || evalErr.Template != "html-report" {
		t.Fatalf("expected existing evaluation error to be kept, got %v", again)
	}
}
