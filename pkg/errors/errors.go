// Package errors provides the single structured error type used throughout
// the transformation engine.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error code constants
const (
	EInternal        = "internal error"
	ENotImplemented  = "not implemented"
	ENotFound        = "not found"
	EConflict        = "conflict"
	EInvalid         = "invalid"
	EForbidden       = "forbidden"
	ETooManyRequests = "too many requests"
	EUnauthorized    = "unauthorized"
	ETooLarge        = "request too large"
	// EUnsupported marks a structural template failure: a node shape the
	// interpreter does not know how to project.
	EUnsupported = "unsupported"
	// EUnavailable marks a remote mapping source that could not be reached
	// within its configured timeout/retry budget.
	EUnavailable = "unavailable"
)

// EngineError is the structured error implementation used across the
// engine: every error the mapping store, path engine, template
// interpreter, transform pipeline and reload controller raise is one of
// these so callers can branch on ErrorCode.
type EngineError struct {
	err     error
	code    string
	message string
}

// New returns a new EngineError with the code and message fields set.
func New(code string, format string, a ...any) *EngineError {
	return &EngineError{
		code:    code,
		message: fmt.Sprintf(format, a...),
	}
}

// Wrap returns a new EngineError which wraps an existing error.
func Wrap(err error, code string, format string, a ...any) *EngineError {
	return &EngineError{
		code:    code,
		message: fmt.Sprintf(format, a...),
		err:     err,
	}
}

// Error implements the error interface by writing out the recursive messages.
func (e *EngineError) Error() string {
	if e.message != "" && e.err != nil {
		var b strings.Builder
		b.WriteString(e.message)
		b.WriteString(": ")
		b.WriteString(e.err.Error())
		return b.String()
	} else if e.message != "" {
		return e.message
	} else if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("<%s>", e.code)
}

// Unwrap allows errors.Is/errors.As to see through an EngineError.
func (e *EngineError) Unwrap() error {
	return e.err
}

// ErrorCode returns the code of the root error, if available; otherwise returns EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	e, ok := unwrapEngineError(err)
	if !ok {
		return EInternal
	}

	if e == nil {
		return ""
	}

	if e.code != "" {
		return e.code
	}

	if e.err != nil {
		return ErrorCode(e.err)
	}

	return EInternal
}

// ErrorMessage returns the messages associated with the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := unwrapEngineError(err)
	if !ok {
		return "An internal error has occurred."
	}

	if e == nil {
		return ""
	}

	if e.message != "" {
		// e.Error() returns the message and the wrapped error
		return e.Error()
	}

	if e.err != nil {
		return ErrorMessage(e.err)
	}

	return "An internal error has occurred."
}

// IsContextCanceledError returns true if the error is a context.Canceled error.
func IsContextCanceledError(err error) bool {
	return errors.Is(err, context.Canceled)
}

func unwrapEngineError(err error) (*EngineError, bool) {
	for {
		if err == nil {
			return nil, false
		}

		eErr, ok := err.(*EngineError)
		if ok {
			return eErr, true
		}

		err = errors.Unwrap(err)
	}
}
