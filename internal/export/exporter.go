// Package export writes rendered QR codes into an export directory, one image
// per account, named after the account label.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/leefowlercu/restore2fa/internal/export/formatters"
	"github.com/leefowlercu/restore2fa/internal/render"
)

// DefaultDir is the export directory used when none is configured.
const DefaultDir = "Export"

// ExportStats contains statistics about an export operation.
type ExportStats struct {
	FileCount  int           `json:"file_count"`
	Files      []string      `json:"files"`
	Dir        string        `json:"dir"`
	ExportedAt time.Time     `json:"exported_at"`
	Duration   time.Duration `json:"duration"`
	Format     string        `json:"format"`
	OutputSize int64         `json:"output_size"`
}

// ExportOptions configures an export operation.
type ExportOptions struct {
	// Dir is the export directory; it is created with 0700 permissions.
	Dir string

	// Format specifies the image format (bmp, png).
	Format string
}

// Exporter writes export items as image files.
type Exporter struct {
	formatters map[string]formatters.Formatter
	logger     *slog.Logger
}

// NewExporter creates a new exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Exporter{
		formatters: make(map[string]formatters.Formatter),
		logger:     logger,
	}

	// Register default formatters
	e.RegisterFormatter("bmp", formatters.NewBMPFormatter())
	e.RegisterFormatter("png", formatters.NewPNGFormatter())

	return e
}

// RegisterFormatter registers a formatter for a format name.
func (e *Exporter) RegisterFormatter(name string, f formatters.Formatter) {
	e.formatters[name] = f
}

// Export writes every item to opts.Dir. Labels are sanitized into file names
// and repeated names get a " (n)" suffix. Existing files with the same name
// are replaced. On error the stats cover the files written so far.
func (e *Exporter) Export(ctx context.Context, items []render.ExportItem, opts ExportOptions) (*ExportStats, error) {
	startTime := time.Now()

	formatter, ok := e.formatters[strings.ToLower(opts.Format)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q; supported formats: %s", opts.Format, strings.Join(e.ListFormats(), ", "))
	}

	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s; %w", dir, err)
	}

	stats := &ExportStats{
		Dir:    dir,
		Format: formatter.Name(),
	}
	finish := func() *ExportStats {
		stats.FileCount = len(stats.Files)
		stats.ExportedAt = time.Now()
		stats.Duration = time.Since(startTime)
		return stats
	}

	used := make(map[string]int)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		name := uniqueName(used, SanitizeFileName(item.Label)) + formatter.FileExtension()
		path := filepath.Join(dir, name)

		size, err := writeImage(path, formatter, item)
		if err != nil {
			return finish(), fmt.Errorf("failed to write %s; %w", path, err)
		}

		stats.Files = append(stats.Files, path)
		stats.OutputSize += size
	}

	finish()
	e.logger.Info("export complete",
		"dir", dir,
		"files", stats.FileCount,
		"format", stats.Format,
		"size", humanize.Bytes(uint64(stats.OutputSize)),
		"duration", stats.Duration)

	return stats, nil
}

// ListFormats returns available format names.
func (e *Exporter) ListFormats() []string {
	formats := make([]string, 0, len(e.formatters))
	for name := range e.formatters {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

func writeImage(path string, f formatters.Formatter, item render.ExportItem) (int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return 0, err
	}

	if err := f.Format(file, item.Image); err != nil {
		file.Close()
		return 0, err
	}

	info, err := file.Stat()
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// uniqueName returns base, or base with a " (n)" suffix when base was already
// handed out. Comparison ignores case so names stay distinct on
// case-insensitive file systems.
func uniqueName(used map[string]int, base string) string {
	name := base
	for {
		key := strings.ToLower(name)
		n := used[key]
		used[key] = n + 1
		if n == 0 {
			return name
		}
		name = base + " (" + strconv.Itoa(n+1) + ")"
	}
}
