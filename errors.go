package fields

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHost indicates an edit was attempted without a Host to commit it.
	ErrNoHost = errors.New("fields: editor host not configured")
	// ErrEmptyFieldName indicates an edit named no field.
	ErrEmptyFieldName = errors.New("fields: field name must not be empty")
)

// ResolveError wraps a failure returned by a resolution hook.
type ResolveError struct {
	EntityID   string
	EntityType string
	Seq        uint64
	Err        error
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	typ := e.EntityType
	if typ == "" {
		typ = "root"
	}
	return fmt.Sprintf("fields: resolve %s %q (seq %d): %v", typ, e.EntityID, e.Seq, e.Err)
}

func (e *ResolveError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError carries the rule that failed alongside the engine error.
type EvaluationError struct {
	Engine string
	Expr   string
	Field  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	field := e.Field
	if field == "" {
		field = "-"
	}
	return fmt.Sprintf("fields: %s rule for field %s %s: %v", e.Engine, field, describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "fields:") {
		return err
	}
	return fmt.Errorf("fields: %s evaluator: %w", engine, err)
}

// wrapEvaluationError fills missing metadata on an existing EvaluationError
// or wraps err in a new one.
func wrapEvaluationError(engine, expr, field string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Field == "" {
			evalErr.Field = field
		}
		return evalErr
	}
	return &EvaluationError{Engine: engine, Expr: expr, Field: field, Err: err}
}
