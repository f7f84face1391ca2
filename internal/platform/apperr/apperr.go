// Package apperr defines the application error taxonomy shared by services
// and handlers: not-found, unauthorized, validation, transport and
// persistence failures, each mapping to a stable HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindNotFound signals a referenced entity that does not exist.
	KindNotFound Kind = iota + 1
	// KindUnauthorized signals an entity that exists but does not belong to
	// the caller's context (e.g. an enrollment from another campaign).
	KindUnauthorized
	// KindValidation signals missing or malformed input.
	KindValidation
	// KindTransport signals an external collaborator failure (geocoding,
	// email). Transport errors are absorbed and reported as data.
	KindTransport
	// KindPersistence signals a storage-layer failure; the surrounding
	// transaction is rolled back.
	KindPersistence
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two Errors of the same Kind match under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Transport(msg string, cause error) error {
	return &Error{Kind: KindTransport, Msg: msg, Err: cause}
}

func Persistence(msg string, cause error) error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: cause}
}

// KindOf returns the Kind of err, or 0 when err is not an application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsTransport(err error) bool    { return KindOf(err) == KindTransport }
func IsPersistence(err error) bool  { return KindOf(err) == KindPersistence }

// HTTPStatus maps an error to the HTTP status handlers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindTransport:
		return http.StatusBadGateway
	case KindPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
