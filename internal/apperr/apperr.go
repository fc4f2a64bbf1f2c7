// Package apperr defines the error taxonomy shared by all services.
//
// Every failure a service returns carries one of five kinds; the request
// boundary maps kinds to transport statuses and never inspects messages.
// All errors are local, synchronous and non-retryable.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	// KindNotFound: a referenced user, group, expense or contact id does not exist.
	KindNotFound Kind = "not_found"
	// KindValidation: missing or malformed operation input.
	KindValidation Kind = "validation"
	// KindConflict: a uniqueness rule was violated (duplicate group name,
	// duplicate contact edge).
	KindConflict Kind = "conflict"
	// KindUnauthorized: the actor does not own the record or lacks the
	// required group permission.
	KindUnauthorized Kind = "unauthorized"
	// KindInvalidState: a state-machine precondition was violated, e.g.
	// accepting a non-pending invitation.
	KindInvalidState Kind = "invalid_state"
)

// Error is a tagged service error.
type Error struct {
	Kind   Kind
	Entity string // entity type the error concerns, e.g. "contact"
	Msg    string
	Err    error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Entity, e.Msg, e.Err)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing entity by id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Msg: fmt.Sprintf("%s not found: %s", entity, id)}
}

// Validation reports bad input.
func Validation(entity, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(entity, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized reports an ownership or permission failure.
func Unauthorized(entity, format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// InvalidState reports a state-machine precondition violation.
func InvalidState(entity, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure (storage errors and the like).
// It deliberately has no Kind of its own; KindOf returns "" for it.
func Internal(entity string, err error) *Error {
	return &Error{Entity: entity, Msg: "internal error", Err: err}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
