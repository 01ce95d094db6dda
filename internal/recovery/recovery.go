// Package recovery drives the secret recovery pipeline: archive unpacking,
// storage parsing, record decoding, URI building and QR rendering.
//
// Unpacking and storage failures abort a run. Records that fail to decode and
// accounts that fail to render are skipped, logged and reported in the result.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/restore2fa/internal/archive"
	"github.com/leefowlercu/restore2fa/internal/decode"
	"github.com/leefowlercu/restore2fa/internal/fsutil"
	"github.com/leefowlercu/restore2fa/internal/otp"
	"github.com/leefowlercu/restore2fa/internal/render"
	"github.com/leefowlercu/restore2fa/internal/storage"
)

// Stage names the pipeline step an account was skipped at.
type Stage string

const (
	StageDecode Stage = "decode"
	StageRender Stage = "render"
)

// Skip is one account left out of a run.
type Skip struct {
	Stage Stage
	// Key is the storage key for decode skips and the label for render skips.
	Key string
	Err error
}

// Scan holds the credentials read from one source.
type Scan struct {
	Credentials []otp.Credential
	Skipped     []Skip
	Source      string
	RunID       string
	Records     int
}

// Result holds the export items produced from one source.
type Result struct {
	Items    []render.ExportItem
	Skipped  []Skip
	Source   string
	RunID    string
	Duration time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithUnpacker sets the archive unpacker.
func WithUnpacker(u *archive.Unpacker) Option {
	return func(c *Coordinator) {
		c.unpacker = u
	}
}

// WithRenderer sets the QR renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(c *Coordinator) {
		c.renderer = r
	}
}

// WithStorageOptions sets the options used to open storage files.
func WithStorageOptions(opts ...storage.Option) Option {
	return func(c *Coordinator) {
		c.storageOpts = opts
	}
}

// WithLogger sets the logger. Skips are logged at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// Coordinator is the entry point to the pipeline. It holds no state between
// runs and may be reused.
type Coordinator struct {
	unpacker    *archive.Unpacker
	renderer    *render.Renderer
	storageOpts []storage.Option
	logger      *slog.Logger
}

// New creates a Coordinator with default components.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.unpacker == nil {
		c.unpacker = archive.New(archive.WithLogger(c.logger))
	}
	if c.renderer == nil {
		c.renderer = render.New()
	}

	return c
}

// FromArchive recovers every account in the backup archive at path.
func (c *Coordinator) FromArchive(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	scan, err := c.ScanArchive(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.render(ctx, scan, start)
}

// FromStorageFile recovers every account in the database file at path.
func (c *Coordinator) FromStorageFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	scan, err := c.ScanStorageFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.render(ctx, scan, start)
}

// ScanArchive extracts the database from the archive at path and decodes its
// credentials. The extracted copy is removed before ScanArchive returns.
func (c *Coordinator) ScanArchive(ctx context.Context, path string) (*Scan, error) {
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "source", path)
	logger.Info("recovering from archive")

	extracted, err := c.unpacker.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := extracted.Cleanup(); err != nil {
			logger.Warn("failed to remove extracted database", "path", extracted.Path, "error", err)
		}
	}()

	logger.Debug("archive unpacked", "entry", extracted.Entry, "size", extracted.Size)

	return c.scan(ctx, logger, runID, path, extracted.Path)
}

// ScanStorageFile decodes the credentials in the database file at path.
func (c *Coordinator) ScanStorageFile(ctx context.Context, path string) (*Scan, error) {
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "source", path)
	logger.Info("recovering from database file")

	return c.scan(ctx, logger, runID, path, path)
}

func (c *Coordinator) scan(ctx context.Context, logger *slog.Logger, runID, source, dbPath string) (*Scan, error) {
	if logger.Enabled(ctx, slog.LevelDebug) {
		if sum, err := fsutil.HashFile(dbPath); err == nil {
			logger.Debug("opening database", "path", dbPath, "sha256", sum)
		}
	}

	store, err := storage.Open(ctx, dbPath, append([]storage.Option{storage.WithLogger(logger)}, c.storageOpts...)...)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var records []storage.RawRecord
	for rec, err := range store.Records(ctx) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	decoded := decode.Decode(records)

	scan := &Scan{
		Credentials: decoded.Credentials,
		Source:      source,
		RunID:       runID,
		Records:     len(records),
	}
	for _, s := range decoded.Skips {
		logger.Warn("record skipped", "table", s.Source, "key", s.Key, "ordinal", s.Ordinal, "error", s.Reason)
		scan.Skipped = append(scan.Skipped, Skip{Stage: StageDecode, Key: s.Key, Err: s})
	}

	if len(scan.Credentials) == 0 {
		return nil, storage.NewUnrecognizedError(source,
			fmt.Sprintf("no credentials decoded from %d records in %v", len(records), store.Tables()), nil)
	}

	logger.Info("credentials decoded",
		"records", len(records),
		"credentials", len(scan.Credentials),
		"skipped", len(scan.Skipped))

	return scan, nil
}

func (c *Coordinator) render(ctx context.Context, scan *Scan, start time.Time) (*Result, error) {
	logger := c.logger.With("run_id", scan.RunID, "source", scan.Source)

	res := &Result{
		Skipped: scan.Skipped,
		Source:  scan.Source,
		RunID:   scan.RunID,
	}

	for _, cred := range scan.Credentials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item, err := c.renderer.Render(otp.BuildURI(cred), cred.Label())
		if err != nil {
			logger.Warn("account skipped", "label", cred.Label(), "error", err)
			res.Skipped = append(res.Skipped, Skip{Stage: StageRender, Key: cred.Label(), Err: err})
			continue
		}
		res.Items = append(res.Items, item)
	}

	res.Duration = time.Since(start)
	logger.Info("recovery complete",
		"items", len(res.Items),
		"skipped", len(res.Skipped),
		"duration", res.Duration)

	return res, nil
}
