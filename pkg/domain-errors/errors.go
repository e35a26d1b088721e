// Package domainerrors defines the coded error type shared by services and handlers.
//
// Services return *Error values (or wrap lower-level errors with Wrap) so the
// transport layer can translate them into HTTP responses without string matching.
// Infrastructure facts such as "row not found" live in pkg/platform/sentinel and are
// translated into coded errors at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure. Codes double as the "error" field of
// JSON error envelopes.
type Code string

const (
	CodeBadRequest          Code = "bad_request"
	CodeValidation          Code = "validation_error"
	CodeInvalidInput        Code = "invalid_input"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeInvariantViolation  Code = "invariant_violation"
	CodeTimeout             Code = "timeout"
	CodeUnavailable         Code = "unavailable"
	CodeInternal            Code = "internal_error"
	CodeMissingHierarchy    Code = "missing_hierarchy"
	CodeExportEncoding      Code = "export_encoding_failure"
	CodeInactiveUser        Code = "inactive_user"
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeUpstreamRateLimited Code = "upstream_rate_limited"
)

// Error is a domain error with a stable code and a human readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. A nil err yields a plain
// coded error so callers can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// From extracts the outermost domain error from err's chain.
func From(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	de, ok := From(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
