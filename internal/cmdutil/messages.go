package cmdutil

import (
	"errors"
	"fmt"

	"github.com/leefowlercu/restore2fa/internal/archive"
	"github.com/leefowlercu/restore2fa/internal/storage"
)

// Console messages for fatal failures. They never include file contents or
// secrets; the full error chain goes to the log file.
const (
	MsgDatabaseUnrecognized = "The database file is not recognized."
	MsgArchiveFailure       = "The archive file cannot be processed."
	MsgUnexpected           = "Unexpected behaviour."
)

// MissingFileError reports an input path that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("File %s does not exist.", e.Path)
}

// ReportedError marks an error whose user-facing message was already
// printed. Execute exits non-zero without printing it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// UserMessage maps err to the fixed message shown on the console.
func UserMessage(err error) string {
	var missing *MissingFileError
	switch {
	case errors.As(err, &missing):
		return missing.Error()
	case errors.Is(err, archive.ErrUnarchiveFailure):
		return MsgArchiveFailure
	case errors.Is(err, storage.ErrDatabaseUnrecognized):
		return MsgDatabaseUnrecognized
	default:
		return MsgUnexpected
	}
}

// ExportSummary is the line printed after a successful export.
func ExportSummary(n int, dir string) string {
	noun := "keys"
	if n == 1 {
		noun = "key"
	}
	return fmt.Sprintf("%d %s exported to %s", n, noun, dir)
}
