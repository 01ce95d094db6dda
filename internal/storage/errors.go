package storage

import (
	"errors"
	"fmt"
)

// ErrDatabaseUnrecognized marks a storage file that is missing, unreadable or
// does not hold authenticator data. Callers test for it with errors.Is.
var ErrDatabaseUnrecognized = errors.New("database unrecognized")

// ErrConsumed is yielded when Records is called a second time on a Store.
var ErrConsumed = errors.New("records already consumed")

// Error describes why a storage file was rejected and keeps the root cause.
type Error struct {
	Path   string
	Reason string
	Err    error
}

// NewUnrecognizedError builds an Error for path. err may be nil.
func NewUnrecognizedError(path, reason string, err error) *Error {
	return &Error{Path: path, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database %s unrecognized: %s; %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("database %s unrecognized: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrDatabaseUnrecognized as a match for every Error.
func (e *Error) Is(target error) bool {
	return target == ErrDatabaseUnrecognized
}
