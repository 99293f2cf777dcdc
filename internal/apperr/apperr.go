package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the business outcomes the API
// distinguishes between. Conflicts and validation failures are ordinary
// results under contention, not exceptional conditions.
type Kind int

const (
	// Validation marks malformed input (inverted time window, missing field).
	// Rejected before any store access, never retried.
	Validation Kind = iota + 1
	// NotFound marks a lot, spot or booking id that does not exist.
	NotFound
	// Authorization marks a caller that is not the owner of the resource.
	Authorization
	// Conflict marks an interval overlap detected at booking time. Expected
	// and frequent under contention; callers may retry with another spot or
	// window.
	Conflict
	// Storage marks a transaction, lock or I/O failure. Transient; the
	// coordinator retries a bounded number of times before surfacing it.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Authorization:
		return "authorization"
	case Conflict:
		return "conflict"
	case Storage:
		return "storage"
	}
	return "unknown"
}

// Error is the tagged error value returned for expected business outcomes.
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

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
