// Package apperr holds the error taxonomy shared by the store, the ledger
// and the services. The HTTP layer maps each Kind to one status code.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
	KindAuth       Kind = "auth"
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrStorage    = &Error{Kind: KindStorage}
	ErrAuth       = &Error{Kind: KindAuth}
)

type Error struct {
	Kind      Kind
	Message   string
	Field     string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

func Storage(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// Retry marks a storage failure the caller may safely repeat.
func Retry(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Retryable: true, Err: err}
}

// KindOf reports the Kind of err, or KindStorage for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// IsRetryable reports whether err is a storage failure worth repeating.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStorage && e.Retryable
}

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgNumericOutOfRange    = "22003"
)

// FromStore translates gorm and driver errors into the taxonomy. Errors that
// are already typed pass through unchanged. what names the entity for messages.
func FromStore(err error, what string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: what + " already exists", Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Retry(err, "%s: store timed out", what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: what + " already exists", Err: err}
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return Retry(err, "%s: concurrent update", what)
		case pgNumericOutOfRange:
			return &Error{Kind: KindValidation, Message: what + ": value out of range", Err: err}
		}
	}
	return Storage(err, "%s: store failure", what)
}
