package attendance

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for mapping to a transport status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
)

// Error is the error type returned by the attendance core.
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

func validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func authErr(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Msg: msg, Err: err}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err. Internal errors map to
// a generic message so no internal detail leaks to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "Internal server error."
}

// ErrLedgerNotFound is returned by LedgerStore lookups when no ledger
// document exists for the requested pair.
var ErrLedgerNotFound = errors.New("ledger not found")
