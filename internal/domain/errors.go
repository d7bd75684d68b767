package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies business errors so callers can map them to an outcome
// without string matching.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindInvalidState Kind = "INVALID_STATE"
	KindInvalidInput Kind = "INVALID_INPUT"
)

// Error is a business rule violation with a classification kind.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// E creates a classified business error.
func E(kind Kind, msg string) error {
	return errors.WithStack(&Error{kind: kind, msg: msg})
}

// Ef creates a classified business error with a formatted message.
func Ef(kind Kind, format string, args ...any) error {
	return errors.WithStack(&Error{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// WrapKind wraps err with a classification kind and message.
func WrapKind(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{kind: kind, msg: msg, err: err})
}

// KindOf extracts the classification of err, or "" if err carries none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.kind
	}
	return ""
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
