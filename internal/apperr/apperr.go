// Package apperr defines the error kinds returned by the household services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrSoleAdmin       = errors.New("sole admin must promote another member first")
	ErrAlreadyMember   = errors.New("already a member")
	ErrAlreadyAdmin    = errors.New("already an admin")
	ErrNotAssignee     = errors.New("not the current assignee")
	ErrPersistence     = errors.New("persistence error")
)

// Error carries a kind sentinel, a user-facing message and an optional cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newErr(kind error, format string, args ...any) error {
	msg := kind.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{kind: kind, msg: msg}
}

func Unauthenticated() error { return newErr(ErrUnauthenticated, "") }

func InvalidCredentials() error { return newErr(ErrUnauthenticated, "invalid email or password") }

func Forbidden(format string, args ...any) error { return newErr(ErrForbidden, format, args...) }

func NotFound(format string, args ...any) error { return newErr(ErrNotFound, format, args...) }

func Validation(format string, args ...any) error { return newErr(ErrValidation, format, args...) }

func SoleAdmin() error { return newErr(ErrSoleAdmin, "") }

func AlreadyMember(format string, args ...any) error { return newErr(ErrAlreadyMember, format, args...) }

func AlreadyAdmin() error { return newErr(ErrAlreadyAdmin, "") }

func NotAssignee() error { return newErr(ErrNotAssignee, "") }

// Persistence wraps a storage failure. The cause is kept for logging and
// never shown to callers.
func Persistence(op string, err error) error {
	return &Error{kind: ErrPersistence, msg: op, cause: err}
}

// Message returns the text safe to show a caller.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrPersistence) {
		return "something went wrong, please try again"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return "something went wrong, please try again"
}

// Kind returns the sentinel for err, or ErrPersistence for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{
		ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrValidation, ErrSoleAdmin,
		ErrAlreadyMember, ErrAlreadyAdmin, ErrNotAssignee, ErrPersistence,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrPersistence
}

// HTTPStatus maps err to the status code returned to API clients.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrSoleAdmin, ErrAlreadyMember, ErrAlreadyAdmin, ErrNotAssignee:
		return http.StatusConflict
	case ErrValidation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
