package payment

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a payment error for callers. Every error crossing the
// service or repository boundary carries exactly one kind.
type ErrorKind string

const (
	// ErrValidation marks bad input rejected before any external call.
	ErrValidation ErrorKind = "validation"
	// ErrConfiguration marks a missing credential or endpoint.
	ErrConfiguration ErrorKind = "configuration"
	// ErrTransport marks a network, timeout or malformed-response failure.
	// Transient; the verify step is safe to retry.
	ErrTransport ErrorKind = "transport"
	// ErrGatewayRejection marks a non-success answer from the provider API.
	ErrGatewayRejection ErrorKind = "gateway_rejection"
	// ErrConflict marks a failed compare-and-set: a concurrent transition
	// already happened. Callers should re-read state, not retry blindly.
	ErrConflict ErrorKind = "conflict"
	// ErrNotFound marks an unknown transaction reference or subscription.
	ErrNotFound ErrorKind = "not_found"
	// ErrDuplicateReference marks a reference collision at creation.
	ErrDuplicateReference ErrorKind = "duplicate_reference"
)

// Error is the tagged error type used across the payment core.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
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

// NewError builds a tagged payment error.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a tagged payment error around a cause.
func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the kind from an error chain; empty if err carries none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
