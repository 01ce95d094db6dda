package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Export size bounds in pixels.
const (
	MinExportSize = 64
	MaxExportSize = 4096
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validExportFormats = map[string]bool{
	"bmp": true,
	"png": true,
}

var validRecoveryLevels = map[string]bool{
	"low": true, "l": true,
	"medium": true, "m": true,
	"high": true, "q": true,
	"highest": true, "h": true,
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		add("log_level", "must be one of: debug, info, warn, error; got %q", cfg.LogLevel)
	}
	if cfg.LogFile == "" {
		add("log_file", "must not be empty")
	}
	if cfg.LogMaxSizeMB < 1 {
		add("log_max_size_mb", "must be at least 1, got %d", cfg.LogMaxSizeMB)
	}
	if cfg.LogMaxBackups < 0 {
		add("log_max_backups", "must be non-negative, got %d", cfg.LogMaxBackups)
	}

	// Export
	if cfg.Export.Dir == "" {
		add("export.dir", "must not be empty")
	}
	if !validExportFormats[strings.ToLower(cfg.Export.Format)] {
		add("export.format", "must be one of: bmp, png; got %q", cfg.Export.Format)
	}
	if cfg.Export.Size < MinExportSize || cfg.Export.Size > MaxExportSize {
		add("export.size", "must be between %d and %d, got %d", MinExportSize, MaxExportSize, cfg.Export.Size)
	}
	if !validRecoveryLevels[strings.ToLower(cfg.Export.RecoveryLevel)] {
		add("export.recovery_level", "must be one of: low, medium, high, highest; got %q", cfg.Export.RecoveryLevel)
	}

	// Archive
	if cfg.Archive.Package == "" || strings.Contains(cfg.Archive.Package, "/") {
		add("archive.package", "must be a non-empty package name without slashes, got %q", cfg.Archive.Package)
	}
	if cfg.Archive.StorageEntry == "" || path.IsAbs(cfg.Archive.StorageEntry) {
		add("archive.storage_entry", "must be a non-empty relative path, got %q", cfg.Archive.StorageEntry)
	}
	if cfg.Archive.MaxEntrySize < 1 {
		add("archive.max_entry_size", "must be at least 1, got %d", cfg.Archive.MaxEntrySize)
	}

	// Storage
	if !identPattern.MatchString(cfg.Storage.Table) {
		add("storage.table", "must be a SQL identifier, got %q", cfg.Storage.Table)
	}
	if cfg.Storage.LegacyTable != "" && !identPattern.MatchString(cfg.Storage.LegacyTable) {
		add("storage.legacy_table", "must be empty or a SQL identifier, got %q", cfg.Storage.LegacyTable)
	}
	if cfg.Storage.KeyPrefix == "" || strings.Contains(cfg.Storage.KeyPrefix, ".") {
		add("storage.key_prefix", "must be non-empty and contain no dots, got %q", cfg.Storage.KeyPrefix)
	}

	// Discovery
	if _, err := path.Match(cfg.Discovery.ArchiveGlob, ""); err != nil || cfg.Discovery.ArchiveGlob == "" {
		add("discovery.archive_glob", "must be a valid glob pattern, got %q", cfg.Discovery.ArchiveGlob)
	}
	if cfg.Discovery.DatabaseName == "" {
		add("discovery.database_name", "must not be empty")
	}
	if cfg.Discovery.DefaultArchive == "" {
		add("discovery.default_archive", "must not be empty")
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
