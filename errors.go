package menu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures reported by the menu tree.
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota
	// ErrorUnsupportedKind marks a first assignment whose shape is none of the
	// recognised value kinds.
	ErrorUnsupportedKind
	// ErrorTypeMismatch marks a read or write using the wrong value type.
	ErrorTypeMismatch
	// ErrorPersistedDataCorrupt marks stored bytes that failed to decode.
	ErrorPersistedDataCorrupt
	// ErrorFileIO marks a failed load or save of a group file.
	ErrorFileIO
	// ErrorTree marks an invalid tree operation (double attach, unknown handle).
	ErrorTree
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnsupportedKind:
		return "unsupported_kind"
	case ErrorTypeMismatch:
		return "type_mismatch"
	case ErrorPersistedDataCorrupt:
		return "persisted_data_corrupt"
	case ErrorFileIO:
		return "file_io"
	case ErrorTree:
		return "tree"
	default:
		return "unknown"
	}
}

var (
	ErrUnsupportedKind     = errors.New("menu: unsupported value kind")
	ErrTypeMismatch        = errors.New("menu: value type mismatch")
	ErrPersistedCorrupt    = errors.New("menu: persisted data corrupt")
	ErrFileIO              = errors.New("menu: group file io")
	ErrAlreadyAttached     = errors.New("menu: node already attached")
	ErrInvalidHandle       = errors.New("menu: invalid node handle")
	ErrNoEvaluator         = errors.New("menu: evaluator not configured")
	ErrConditionNotBoolean = errors.New("menu: condition did not evaluate to a boolean")
	ErrUnknownFunction     = errors.New("menu: unknown rule function")
	ErrFunctionExists      = errors.New("menu: rule function already registered")
	ErrInvalidFunction     = errors.New("menu: invalid rule function")
)

// Error carries the failing operation and item path alongside the cause.
type Error struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("menu: %s [%s] path=%s: %v", e.Op, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("menu: %s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel associated with the error kind so callers can use
// errors.Is(err, ErrTypeMismatch) without unwrapping manually.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ErrorUnsupportedKind:
		return target == ErrUnsupportedKind
	case ErrorTypeMismatch:
		return target == ErrTypeMismatch
	case ErrorPersistedDataCorrupt:
		return target == ErrPersistedCorrupt
	case ErrorFileIO:
		return target == ErrFileIO
	}
	return false
}

func newError(op string, kind ErrorKind, path string, err error) *Error {
	return &Error{Op: op, Kind: kind, Path: path, Err: err}
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("menu: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
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
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "menu:") {
		return err
	}
	return fmt.Errorf("menu: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, err error) error {
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
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
