package application

import (
	"errors"
	"net/http"
)

// Kind classifies service failures for the HTTP edge.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindDependency
)

// Error is a classified service failure. Message is safe to show to callers;
// Err carries the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to a response code. Conflicts and cooldowns are
// reported as 400.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindRateLimited:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func validationErr(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func notFoundErr(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflictErr(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
func unauthorizedErr(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func rateLimitedErr(msg string) error  { return &Error{Kind: KindRateLimited, Message: msg} }

func dependencyErr(msg string, cause error) error {
	return &Error{Kind: KindDependency, Message: msg, Err: cause}
}

// AsError extracts a classified error, or nil when err is unclassified.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err is a classified error of kind k.
func IsKind(err error, k Kind) bool {
	e := AsError(err)
	return e != nil && e.Kind == k
}
