// Package rulerr provides the structured error type used by rule resolution.
package rulerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that carries no rule code.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidationFailure marks an effect whose precondition was unmet.
	CodeValidationFailure Code = "VALIDATION_FAILURE"
	// CodeDataLookupFailure marks an unknown card, unit, hero or skill id.
	CodeDataLookupFailure Code = "DATA_LOOKUP_FAILURE"
	// CodeInvariantViolation marks a move that contradicts the game state,
	// such as playing a card that is not in hand.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"
)

// Error is a rule failure tagged with a code.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a rule error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a rule error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeUnknown
}

// Validation is shorthand for a formatted validation failure.
func Validation(format string, args ...any) *Error {
	return Newf(CodeValidationFailure, format, args...)
}
