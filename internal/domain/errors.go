package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or out-of-range input. Detected locally, before any external call.
	ErrValidation = errors.New("validation error")
	// ErrAuthentication signals a missing or invalid bearer credential.
	ErrAuthentication = errors.New("authentication error")
	// ErrUpstream signals an embedding provider failure (transport error, timeout, non-2xx).
	ErrUpstream = errors.New("embedding provider error")
	// ErrPersistence signals that the datastore rejected a document insert.
	ErrPersistence = errors.New("persistence error")
	// ErrSearch signals that the similarity search capability failed.
	ErrSearch = errors.New("search error")
	// ErrVectorDimMismatch signals an embedding whose length differs from the model dimensionality.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// Kind classifies a failure for the response envelope.
type Kind string

// Failure kinds, one per error family.
const (
	KindValidation     Kind = "validation_error"
	KindAuthentication Kind = "authentication_error"
	KindUpstream       Kind = "upstream_error"
	KindPersistence    Kind = "persistence_error"
	KindSearch         Kind = "search_error"
	KindInternal       Kind = "internal_error"
)

// Error carries a client-safe message next to its kind sentinel.
// Message is what the caller sees; the sentinel drives classification.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validationf builds a validation error with a formatted client message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Authenticationf builds an authentication error with a formatted client message.
func Authenticationf(format string, args ...any) error {
	return &Error{Kind: ErrAuthentication, Message: fmt.Sprintf(format, args...)}
}

// Upstreamf builds an embedding provider error with a formatted client message.
func Upstreamf(format string, args ...any) error {
	return &Error{Kind: ErrUpstream, Message: fmt.Sprintf(format, args...)}
}

// KindOf maps an error chain to its kind. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrVectorDimMismatch):
		return KindPersistence
	case errors.Is(err, ErrSearch):
		return KindSearch
	default:
		return KindInternal
	}
}

// MessageOf returns the innermost client-safe message in the chain, or the fallback.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
