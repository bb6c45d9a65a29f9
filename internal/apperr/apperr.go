// Package apperr defines the error taxonomy shared by all services.
// Domain guards fail with a specific member; unexpected collaborator
// failures are wrapped as Dependency errors at the operation boundary so
// internal details never reach the caller.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindNotFound
	KindConflict
	KindDependency
)

// Error carries a stable machine-readable code plus a human-readable
// message. The cause, if any, is kept for logging and unwrapping only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports malformed or missing input.
func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// Authorization reports a caller acting on a resource they are not party to.
func Authorization(code, msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: msg}
}

// NotFound reports an absent referenced entity.
func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// Conflict reports a state-machine guard violation, duplicate, or
// exhausted quota.
func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// Dependency wraps a storage or collaborator failure. The cause is logged
// server-side; callers only see the generic code and message.
func Dependency(cause error) *Error {
	return &Error{
		Kind:    KindDependency,
		Code:    "internal_error",
		Message: "internal server error",
		cause:   cause,
	}
}

// As extracts an *Error from err, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
