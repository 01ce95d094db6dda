package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/export"
	"github.com/leefowlercu/restore2fa/internal/fsutil"
	"github.com/leefowlercu/restore2fa/internal/recovery"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
	"github.com/leefowlercu/restore2fa/internal/tui/styles"
)

// ExportFlags are the command-line overrides shared by the export commands.
type ExportFlags struct {
	Output string
	Format string
	Size   int
}

// Register adds --output, --format and --size to cmd.
func (f *ExportFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "Export directory (default from export.dir)")
	cmd.Flags().StringVar(&f.Format, "format", "", "Image format: bmp or png (default from export.format)")
	cmd.Flags().IntVar(&f.Size, "size", 0, "QR image size in pixels (default from export.size)")
}

// Apply copies the flags the user set into the loaded configuration.
func (f *ExportFlags) Apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		config.Set("export.dir", f.Output)
	}
	if flags.Changed("format") {
		config.Set("export.format", f.Format)
	}
	if flags.Changed("size") {
		config.Set("export.size", f.Size)
	}
}

// DetectSource guesses how to read path from its content, falling back to
// its extension.
func DetectSource(path string) (picker.Source, error) {
	mime, err := fsutil.SniffFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s; %w", path, err)
	}
	if mime == "" || mime == fsutil.MIMEUnknown {
		mime = fsutil.MIMEFromExtension(filepath.Ext(path))
	}

	switch mime {
	case fsutil.MIMEGzip:
		return picker.SourceArchive, nil
	case fsutil.MIMESQLite:
		return picker.SourceDatabase, nil
	default:
		return "", fmt.Errorf("cannot tell whether %s is an archive or a database; use --source", path)
	}
}

// Export runs the recovery pipeline for in and writes the QR images. Fatal
// failures are reported on stderr with a fixed message and returned as a
// ReportedError.
func Export(cmd *cobra.Command, in Input) error {
	logger := slog.Default()

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	in, err = resolveInput(in)
	if err != nil {
		return Fail(cmd, logger, err)
	}

	res, err := recoverInput(commandContext(cmd), cfg, logger, in)
	if err != nil {
		return Fail(cmd, logger, err)
	}

	opts, err := ExportOptions(cfg)
	if err != nil {
		return Fail(cmd, logger, err)
	}
	stats, err := export.NewExporter(logger.With("component", "export")).Export(commandContext(cmd), res.Items, opts)
	if err != nil {
		return Fail(cmd, logger, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.SuccessText.Render(ExportSummary(stats.FileCount, stats.Dir)))
	fmt.Fprintln(out, styles.MutedText.Render(fmt.Sprintf("%s written in %s",
		humanize.Bytes(uint64(stats.OutputSize)), res.Duration.Round(time.Millisecond))))
	reportSkipped(out, len(res.Skipped), cfg)

	return nil
}

// Scan recovers the credentials in in without rendering anything.
func Scan(cmd *cobra.Command, in Input) (*recovery.Scan, error) {
	logger := slog.Default()

	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}

	in, err = resolveInput(in)
	if err != nil {
		return nil, Fail(cmd, logger, err)
	}

	coord, err := NewCoordinator(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx := commandContext(cmd)
	var scan *recovery.Scan
	switch in.Source {
	case picker.SourceArchive:
		scan, err = coord.ScanArchive(ctx, in.Path)
	default:
		scan, err = coord.ScanStorageFile(ctx, in.Path)
	}
	if err != nil {
		return nil, Fail(cmd, logger, err)
	}

	reportSkipped(cmd.ErrOrStderr(), len(scan.Skipped), cfg)
	return scan, nil
}

// resolveInput checks that in.Path names a file and makes it absolute.
func resolveInput(in Input) (Input, error) {
	if err := CheckInput(in.Path); err != nil {
		return in, err
	}
	path, err := ResolvePath(in.Path)
	if err != nil {
		return in, fmt.Errorf("failed to resolve %s; %w", in.Path, err)
	}
	in.Path = path
	return in, nil
}

// Fail prints the console message for err, logs the full chain and returns
// a ReportedError.
func Fail(cmd *cobra.Command, logger *slog.Logger, err error) error {
	logger.Error("recovery failed", "error", err)
	fmt.Fprintln(cmd.ErrOrStderr(), styles.ErrorText.Render(UserMessage(err)))
	return &ReportedError{Err: err}
}

func recoverInput(ctx context.Context, cfg *config.Config, logger *slog.Logger, in Input) (*recovery.Result, error) {
	coord, err := NewCoordinator(cfg, logger)
	if err != nil {
		return nil, err
	}

	if in.Source == picker.SourceArchive {
		return coord.FromArchive(ctx, in.Path)
	}
	return coord.FromStorageFile(ctx, in.Path)
}

func reportSkipped(w io.Writer, n int, cfg *config.Config) {
	if n == 0 {
		return
	}
	noun := "accounts"
	if n == 1 {
		noun = "account"
	}
	fmt.Fprintln(w, styles.WarningText.Render(fmt.Sprintf("%d %s skipped; details in %s",
		n, noun, config.ExpandPath(cfg.LogFile))))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
