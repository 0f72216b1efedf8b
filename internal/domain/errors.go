package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure coming from the upstream API or the media resolver.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServerError
	KindTimeout
	KindConnectionFailure
)

// Sentinel errors, one per Kind, for errors.Is checks at the boundary.
var (
	ErrUnknown           = errors.New("unknown error")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrServerError       = errors.New("upstream server error")
	ErrTimeout           = errors.New("request timed out")
	ErrConnectionFailure = errors.New("connection failure")
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindBadRequest:        "bad_request",
	KindUnauthorized:      "unauthorized",
	KindForbidden:         "forbidden",
	KindNotFound:          "not_found",
	KindRateLimited:       "rate_limited",
	KindServerError:       "server_error",
	KindTimeout:           "timeout",
	KindConnectionFailure: "connection_failure",
}

// String returns the snake_case name of the kind, used in logs and metric labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

func (k Kind) sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindServerError:
		return ErrServerError
	case KindTimeout:
		return ErrTimeout
	case KindConnectionFailure:
		return ErrConnectionFailure
	default:
		return ErrUnknown
	}
}

// upstreamStatus is the status code a ClassifiedError of this kind carries
// unless one is set explicitly. Transport-level kinds carry none.
func (k Kind) upstreamStatus() (int, bool) {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest, true
	case KindUnauthorized:
		return http.StatusUnauthorized, true
	case KindForbidden:
		return http.StatusForbidden, true
	case KindNotFound:
		return http.StatusNotFound, true
	case KindRateLimited:
		return http.StatusTooManyRequests, true
	case KindServerError:
		return http.StatusInternalServerError, true
	default:
		return 0, false
	}
}

// HTTPStatus returns the status the API answers with for this kind.
// Kinds without an explicit mapping fall back to 400.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// ClassifiedError is a failure from the upstream API or the media resolver,
// carrying enough information for the HTTP layer to pick a status.
type ClassifiedError struct {
	Kind       Kind
	Message    string
	StatusCode *int
	RetryAfter *int
	Err        error
}

// NewError creates a ClassifiedError of the given kind. The status code
// defaults to the one implied by the kind.
func NewError(kind Kind, message string) *ClassifiedError {
	e := &ClassifiedError{Kind: kind, Message: message}
	if code, ok := kind.upstreamStatus(); ok {
		e.StatusCode = &code
	}
	return e
}

// Errorf creates a ClassifiedError with a formatted message.
func Errorf(kind Kind, format string, args ...any) *ClassifiedError {
	return NewError(kind, fmt.Sprintf(format, args...))
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ClassifiedError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// WithStatus overrides the carried status code.
func (e *ClassifiedError) WithStatus(code int) *ClassifiedError {
	e.StatusCode = &code
	return e
}

// WithRetryAfter attaches the number of seconds the upstream asked callers to wait.
func (e *ClassifiedError) WithRetryAfter(seconds int) *ClassifiedError {
	e.RetryAfter = &seconds
	return e
}

// WithCause records the lower-level error that triggered the classification.
func (e *ClassifiedError) WithCause(err error) *ClassifiedError {
	e.Err = err
	return e
}

// AsClassified extracts a ClassifiedError from err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Wrap converts err into a ClassifiedError of kind Unknown prefixed with context.
// ClassifiedErrors are returned unchanged so nested calls are never wrapped twice.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if ce, ok := AsClassified(err); ok {
		return ce
	}
	return Errorf(KindUnknown, "%s: %v", context, err).WithCause(err)
}

// MissingField reports an upstream record that lacks a required field.
func MissingField(resource, field string) *ClassifiedError {
	return Errorf(KindUnknown, "Invalid %s data format: missing '%s'", resource, field)
}
