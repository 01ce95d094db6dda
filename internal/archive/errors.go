package archive

import (
	"errors"
	"fmt"
)

// ErrUnarchiveFailure matches every error returned by Extract.
var ErrUnarchiveFailure = errors.New("unarchive failure")

var (
	ErrNotGzip         = errors.New("not a gzip stream")
	ErrEntryNotFound   = errors.New("storage entry not found")
	ErrMultipleEntries = errors.New("multiple storage entries found")
	ErrEntryTooLarge   = errors.New("storage entry too large")
)

// Error reports which step of unpacking an archive failed and keeps the
// low-level cause.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("archive %s: failed to %s; %v", e.Path, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrUnarchiveFailure as a match for every Error.
func (e *Error) Is(target error) bool {
	return target == ErrUnarchiveFailure
}
