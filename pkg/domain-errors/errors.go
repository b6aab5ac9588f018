// Package domainerrors defines the coded, field-tagged errors the domain
// services return. Every error names the entity or concept that caused it
// (the field) together with a human-readable message, so transport layers can
// render a consistent {"field", "message"} envelope without inspecting
// message text.
//
// Stores do not use this package directly; they return sentinel errors
// (pkg/platform/sentinel) and services translate.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and caller branching.
type Code string

const (
	// CodeNotFound means the target entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized means the caller's credentials are missing or invalid.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the caller is authenticated but not allowed to act
	// on the target (not a member, or not the owner where owner-only).
	CodeForbidden Code = "forbidden"
	// CodeConflict means the request violates a business rule (already
	// joined, self-removal, owner leaving their own generator).
	CodeConflict Code = "conflict"
	// CodeInvalidInput means the payload is missing or unusable, including an
	// empty candidate pool at draw time.
	CodeInvalidInput Code = "invalid_input"
	// CodeInternal covers unexpected failures from collaborators.
	CodeInternal Code = "internal"
)

// Error is the concrete domain error type.
type Error struct {
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a domain error with a code, the offending field, and a message.
func New(code Code, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

// Wrap attaches a code, field, and message to an underlying error.
func Wrap(err error, code Code, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// From extracts the domain error from err's chain, if any.
func From(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
