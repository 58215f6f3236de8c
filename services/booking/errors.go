package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation was rejected.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindUpstream      ErrorKind = "upstream"
)

// BookingError is the error every exported operation returns on rejection.
// Message is safe to show to the client.
type BookingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) error {
	return &BookingError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &BookingError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) error {
	return &BookingError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &BookingError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewUpstreamError wraps a failure of a dependent service.
func NewUpstreamError(err error, format string, args ...any) error {
	return &BookingError{Kind: KindUpstream, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" when err is not a BookingError.
func KindOf(err error) ErrorKind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Message
	}
	return "internal error"
}
