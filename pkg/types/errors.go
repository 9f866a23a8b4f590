package types

import "fmt"

// ErrorKind identifies why a value failed validation.
type ErrorKind string

const (
	KindEmptyTarget         ErrorKind = "EmptyTarget"
	KindInvalidEnum         ErrorKind = "InvalidEnum"
	KindMissingField        ErrorKind = "MissingField"
	KindInvalidSeverity     ErrorKind = "InvalidSeverity"
	KindInconsistentSummary ErrorKind = "InconsistentSummary"
	KindMissingError        ErrorKind = "MissingError"
	KindDuplicateID         ErrorKind = "DuplicateID"
)

// ValidationError is returned by every constructor in this package when its
// input does not describe a valid value. Field names the offending field
// where one applies.
type ValidationError struct {
	Kind   ErrorKind
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += "(" + e.Field + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any ValidationError of the same kind, so the sentinels below can
// be used with errors.Is regardless of field or detail.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrEmptyTarget         = &ValidationError{Kind: KindEmptyTarget}
	ErrInvalidEnum         = &ValidationError{Kind: KindInvalidEnum}
	ErrMissingField        = &ValidationError{Kind: KindMissingField}
	ErrInvalidSeverity     = &ValidationError{Kind: KindInvalidSeverity}
	ErrInconsistentSummary = &ValidationError{Kind: KindInconsistentSummary}
	ErrMissingError        = &ValidationError{Kind: KindMissingError}
	ErrDuplicateID         = &ValidationError{Kind: KindDuplicateID}
)

func newValidationError(kind ErrorKind, field, format string, args ...any) *ValidationError {
	e := &ValidationError{Kind: kind, Field: field}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}
