// Package apperr defines the typed failures returned across the service boundary.
package apperr

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies a failure for transport mapping.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindTooManyRequests Kind = "too_many_requests"
	KindTooLarge        Kind = "too_large"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Error carries client-safe messages plus an optional cause that is only logged.
type Error struct {
	Kind     Kind
	Messages []string
	Cause    error

	// RetryAfter is set on throttled failures and surfaces as the Retry-After header.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if len(e.Messages) > 0 {
		msg = e.Messages[0]
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by kind so callers can write errors.Is(err, apperr.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

func Validation(messages ...string) *Error { return New(KindValidation, messages...) }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func Unavailable(message string) *Error { return New(KindUnavailable, message) }

func Throttled(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindTooManyRequests, Messages: []string{message}, RetryAfter: retryAfter}
}

// Internal hides cause from clients; the message is always the generic one.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{"Internal server error"}, Cause: cause}
}

// KindOf reports the kind of err, treating untyped errors as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// RetryAfter reports how long a throttled caller should wait, zero when err is not throttled.
func RetryAfter(err error) time.Duration {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.RetryAfter
	}
	return 0
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ExceptionName is the "status" field value of an error envelope.
func ExceptionName(kind Kind) string {
	switch kind {
	case KindValidation:
		return "BadRequestException"
	case KindUnauthorized:
		return "UnauthorizedException"
	case KindNotFound:
		return "NotFoundException"
	case KindConflict:
		return "ConflictException"
	case KindTooManyRequests:
		return "TooManyRequestsException"
	case KindTooLarge:
		return "PayloadTooLargeException"
	case KindUnavailable:
		return "ServiceUnavailableException"
	default:
		return "InternalServerErrorException"
	}
}

// Messages returns the client-facing messages of err.
func Messages(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal && len(appErr.Messages) > 0 {
		return append([]string(nil), appErr.Messages...)
	}
	if KindOf(err) == KindInternal {
		return []string{"Internal server error"}
	}
	return []string{string(KindOf(err))}
}
