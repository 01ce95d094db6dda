package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/leefowlercu/restore2fa/internal/archive"
	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/export"
	"github.com/leefowlercu/restore2fa/internal/recovery"
	"github.com/leefowlercu/restore2fa/internal/render"
	"github.com/leefowlercu/restore2fa/internal/storage"
)

// NewCoordinator builds a recovery coordinator from cfg. Every component logs
// through logger with its own component attribute.
func NewCoordinator(cfg *config.Config, logger *slog.Logger) (*recovery.Coordinator, error) {
	level, err := render.ParseRecoveryLevel(cfg.Export.RecoveryLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to configure renderer; %w", err)
	}

	unpacker := archive.New(
		archive.WithPackage(cfg.Archive.Package),
		archive.WithStorageEntry(cfg.Archive.StorageEntry),
		archive.WithMaxEntrySize(cfg.Archive.MaxEntrySize),
		archive.WithTempDir(config.ExpandPath(cfg.Archive.TempDir)),
		archive.WithLogger(logger.With("component", "archive")),
	)

	renderer := render.New(
		render.WithSize(cfg.Export.Size),
		render.WithRecoveryLevel(level),
		render.WithBorder(cfg.Export.Border),
		render.WithVerify(cfg.Export.Verify),
	)

	return recovery.New(
		recovery.WithUnpacker(unpacker),
		recovery.WithRenderer(renderer),
		recovery.WithStorageOptions(StorageOptions(cfg)...),
		recovery.WithLogger(logger.With("component", "recovery")),
	), nil
}

// StorageOptions returns the table layout configured in cfg.
func StorageOptions(cfg *config.Config) []storage.Option {
	return []storage.Option{
		storage.WithTable(cfg.Storage.Table),
		storage.WithLegacyTable(cfg.Storage.LegacyTable),
		storage.WithKeyPrefix(cfg.Storage.KeyPrefix),
	}
}

// ExportOptions returns the export directory, resolved to an absolute path,
// and the image format from cfg.
func ExportOptions(cfg *config.Config) (export.ExportOptions, error) {
	dir, err := ResolvePath(cfg.Export.Dir)
	if err != nil {
		return export.ExportOptions{}, fmt.Errorf("failed to resolve export directory %s; %w", cfg.Export.Dir, err)
	}
	return export.ExportOptions{
		Dir:    dir,
		Format: cfg.Export.Format,
	}, nil
}
