// Package apperr classifies failures so the HTTP layer can answer each class
// with its own status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindNotFound
	KindQuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "unauthenticated"
	case KindAuthorization:
		return "forbidden"
	case KindValidation:
		return "invalid_request"
	case KindConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	case KindQuotaExceeded:
		return "quota_exceeded"
	default:
		return "internal"
	}
}

// Status is the HTTP status code a Kind is answered with.
// A state conflict is a 400, matching what clients already handle.
func (k Kind) Status() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrQuotaExceeded  = &Error{Kind: KindQuotaExceeded}
)

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) error { return New(KindAuthentication, msg) }
func Forbidden(msg string) error       { return New(KindAuthorization, msg) }
func Invalid(msg string) error         { return New(KindValidation, msg) }
func Conflict(msg string) error        { return New(KindConflict, msg) }
func NotFound(msg string) error        { return New(KindNotFound, msg) }
func QuotaExceeded(msg string) error   { return New(KindQuotaExceeded, msg) }

// Internal wraps an unexpected store or runtime failure.
func Internal(msg string, err error) error { return Wrap(KindInternal, msg, err) }

// KindOf reports the Kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps err to its HTTP status code.
func Status(err error) int {
	return KindOf(err).Status()
}

// PublicMessage is the text safe to show a client. Internal causes are hidden.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal server error"
		}
		return e.Message
	}
	return "internal server error"
}
