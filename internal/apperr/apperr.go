// Package apperr defines the error kinds shared by the store, the scheduling
// core and the transports.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a status code.
type Kind string

const (
	KindInternal          Kind = "Internal"
	KindNotFound          Kind = "NotFound"
	KindForbidden         Kind = "Forbidden"
	KindDuplicateKey      Kind = "DuplicateKey"
	KindInvalidRequest    Kind = "InvalidRequest"
	KindUnavailable       Kind = "Unavailable"
	KindConflict          Kind = "Conflict"
	KindInvalidState      Kind = "InvalidState"
	KindValidation        Kind = "ValidationError"
	KindHasActiveMissions Kind = "HasActiveMissions"
)

// Sentinels for errors.Is comparisons. An *Error matches the sentinel of its kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrDuplicateKey      = &Error{Kind: KindDuplicateKey}
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
	ErrUnavailable       = &Error{Kind: KindUnavailable}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrHasActiveMissions = &Error{Kind: KindHasActiveMissions}
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind, keeping it in the chain.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(format string, args ...any) error     { return New(KindNotFound, format, args...) }
func Forbidden(format string, args ...any) error    { return New(KindForbidden, format, args...) }
func DuplicateKey(format string, args ...any) error { return New(KindDuplicateKey, format, args...) }
func InvalidRequest(format string, args ...any) error {
	return New(KindInvalidRequest, format, args...)
}
func Unavailable(format string, args ...any) error  { return New(KindUnavailable, format, args...) }
func Conflict(format string, args ...any) error     { return New(KindConflict, format, args...) }
func InvalidState(format string, args ...any) error { return New(KindInvalidState, format, args...) }
func Validation(format string, args ...any) error   { return New(KindValidation, format, args...) }

// HasActiveMissions reports that an entity is still referenced by active missions.
func HasActiveMissions(format string, args ...any) error {
	return New(KindHasActiveMissions, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err. Unclassified errors are
// reported generically so internals do not leak to callers.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "internal error"
}
