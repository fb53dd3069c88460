// Package apperr defines the error taxonomy shared by every domain package.
// Domain packages declare sentinel errors with one of the kinds below, and
// the HTTP boundary maps the kind to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for the HTTP boundary
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindAuthorization Kind = "FORBIDDEN"
	KindMinimumPrice  Kind = "MINIMUM_PRICE_VIOLATION"
	KindTransition    Kind = "TRANSITION_ERROR"
	KindRateLimited   Kind = "RATE_LIMITED"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// Error is a classified domain error
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error

	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel e was derived from
func (e *Error) Is(target error) bool {
	return e.base != nil && e.base == target
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound creates a not-found error for the named resource
func NotFound(resource string) *Error { return New(KindNotFound, resource+" not found") }

// Conflict creates a conflict error
func Conflict(message string) *Error { return New(KindConflict, message) }

// Forbidden creates an authorization error
func Forbidden(message string) *Error { return New(KindAuthorization, message) }

// Transition creates an illegal state-machine move error
func Transition(message string) *Error { return New(KindTransition, message) }

// WithDetails returns a copy of sentinel carrying details. The copy wraps the
// sentinel so errors.Is(copy, sentinel) still holds.
func WithDetails(sentinel *Error, details map[string]string) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Details: details,
		base:    sentinel,
	}
}

// Wrap attaches a cause to sentinel keeping its kind and message
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Details: sentinel.Details,
		Err:     cause,
		base:    sentinel,
	}
}

// KindOf returns the kind of err, or KindInternal when err is unclassified
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the outermost classified error
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
