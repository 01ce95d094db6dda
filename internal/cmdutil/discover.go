package cmdutil

import (
	"fmt"
	"path/filepath"

	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/fsutil"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
)

// Input is a file to recover from and how to read it.
type Input struct {
	Source picker.Source
	Path   string
}

// Discover looks for an input in dir. The first file matching the archive
// glob wins; otherwise a database file with the configured name is used. ok
// is false when neither is present.
func Discover(dir string, cfg config.DiscoveryConfig) (in Input, ok bool, err error) {
	archives, err := fsutil.Glob(dir, cfg.ArchiveGlob)
	if err != nil {
		return Input{}, false, fmt.Errorf("failed to search %s for archives; %w", dir, err)
	}
	if len(archives) > 0 {
		return Input{Source: picker.SourceArchive, Path: archives[0]}, true, nil
	}

	db := filepath.Join(dir, cfg.DatabaseName)
	if fsutil.FileExists(db) {
		return Input{Source: picker.SourceDatabase, Path: db}, true, nil
	}

	return Input{}, false, nil
}

// CheckInput returns a MissingFileError when path does not exist.
func CheckInput(path string) error {
	if !fsutil.FileExists(path) {
		return &MissingFileError{Path: path}
	}
	return nil
}
