// Package errors provides coded domain errors for a catalog run.
//
// Usage:
//
//	// In components - return typed errors
//	if _, err := time.Parse(layout, raw); err != nil {
//	    return errors.Wrapf(err, errors.CodeParse, "session %s: start time %q", id, raw)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrCorrupt) {
//	    // fall back to an empty dictionary
//	}
//
//	// At the process boundary - map to an exit status
//	os.Exit(errors.ExitCode(err))
package errors

import (
	"errors"
	"fmt"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code classifies a failure. Each code has a fixed process exit status.
type Code string

const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION"
	CodeCorrupt    Code = "CORRUPT"
	CodeParse      Code = "PARSE"
	CodeIO         Code = "IO"
	CodeInternal   Code = "INTERNAL"
)

var exitCodes = map[Code]int{
	CodeValidation: 2,
	CodeParse:      3,
	CodeIO:         4,
	CodeCorrupt:    5,
	CodeNotFound:   6,
}

// ExitCode returns the process exit status for c. Unknown codes exit 1.
func (c Code) ExitCode() int {
	if n, ok := exitCodes[c]; ok {
		return n
	}
	return 1
}

// Error carries a Code, a human message, optional structured details and the
// error it wraps.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Code, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

var (
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}
	ErrCorrupt    = &Error{Code: CodeCorrupt, Message: "corrupt data"}
	ErrParse      = &Error{Code: CodeParse, Message: "parse error"}
	ErrIO         = &Error{Code: CodeIO, Message: "i/o error"}
	ErrInternal   = &Error{Code: CodeInternal, Message: "internal error"}
)

func newf(code Code, format string, args []any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args) }

func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args) }

// ValidationWithDetails is a validation error whose Details lists the offending
// fields, as produced by the validation package.
func ValidationWithDetails(msg string, details any) *Error {
	return Validation(msg).WithDetails(details)
}

func Corruptf(format string, args ...any) *Error { return newf(CodeCorrupt, format, args) }

func Internalf(format string, args ...any) *Error { return newf(CodeInternal, format, args) }

// Wrap attaches code and msg to err. The result unwraps to err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	e := newf(code, format, args)
	e.cause = err
	return e
}

// ExitCode maps err to a process exit status: 0 for nil, the code's status for
// a domain error anywhere in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code.ExitCode()
	}
	return 1
}
