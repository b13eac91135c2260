package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a formula error.
type ErrorKind string

// Error kinds.
const (
	// Tokenizing or parsing failure. Always fatal, always positioned.
	ErrSyntax ErrorKind = "SyntaxError"

	// Static or evaluation-time resolution failures
	ErrUnknownIdentifier ErrorKind = "UnknownIdentifier"
	ErrUnknownFunction   ErrorKind = "UnknownFunction"

	// Shape and type failures
	ErrArity ErrorKind = "ArityError"
	ErrType  ErrorKind = "TypeError"

	// Evaluation-only failures
	ErrDivisionByZero     ErrorKind = "DivisionByZero"
	ErrComplexityExceeded ErrorKind = "ComplexityExceeded"
	ErrRuntime            ErrorKind = "RuntimeError"
)

// Error represents a structured formula error.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position *Position
	Token    string
	Hint     string // suggested fix, if one is known
	Err      error
}

// NewError creates a new formula error at pos.
func NewError(kind ErrorKind, message string, pos Position) *Error {
	return &Error{
		Kind:     kind,
		Message:  message,
		Position: &pos,
	}
}

// NewErrorf creates a new formula error without position information.
func NewErrorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithHint attaches a suggested fix.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// MarshalJSON renders the error in the shape the dashboard UI consumes.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message  string    `json:"message"`
		Kind     ErrorKind `json:"kind"`
		Position *Position `json:"position,omitempty"`
		Hint     string    `json:"hint,omitempty"`
	}{e.Message, e.Kind, e.Position, e.Hint})
}

// AsError converts any error into a *Error. Errors that are not formula
// errors become RuntimeError.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Kind: ErrRuntime, Message: err.Error(), Err: err}
}

// IsKind reports whether err is a formula error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
