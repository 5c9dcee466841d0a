package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the mutation API can return. The
// HTTP layer maps kinds to status codes; callers branch with Is.
type ErrorKind string

const (
	AlreadyExists      ErrorKind = "already_exists"
	NotFound           ErrorKind = "not_found"
	PermissionDenied   ErrorKind = "permission_denied"
	InvalidInput       ErrorKind = "invalid_input"
	PersistenceFailure ErrorKind = "persistence_failure"
)

// Error is the single error convention every operation uses (the
// original mixed thrown errors with success flags; here it is one typed
// error the whole surface shares).
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errf builds an Error with a formatted message.
func Errf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: NotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err is a backend Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
