// Package apperr defines the error kinds returned by the service layer.
// Handlers translate a Kind into an HTTP status; everything else only
// needs errors.Is against the exported sentinels.
package apperr

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку бизнес-логики
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a classified error with a client-safe message.
// Err holds the underlying cause and is never shown to the client.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
)

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Conflict(msg string) error     { return newError(KindConflict, msg, nil) }
func Unauthorized(msg string) error { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) error    { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) error     { return newError(KindNotFound, msg, nil) }
func Validation(msg string) error   { return newError(KindValidation, msg, nil) }

// Internal wraps an unexpected fault. The message shown to clients is generic.
func Internal(cause error) error {
	return newError(KindInternal, "internal server error", cause)
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
