// Package archive locates and extracts the authenticator database from an
// app-data backup archive (a gzip-compressed tar stream).
package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/leefowlercu/restore2fa/internal/fsutil"
)

const (
	// DefaultPackage is the authenticator app's package name, which names its
	// private data directory.
	DefaultPackage = "com.google.android.apps.authenticator2"

	// DefaultStorageEntry is the path suffix of the database inside that
	// directory.
	DefaultStorageEntry = "databases/databases"

	// DefaultMaxEntrySize bounds the extracted database.
	DefaultMaxEntrySize int64 = 64 << 20
)

type options struct {
	pkg          string
	storageEntry string
	maxEntrySize int64
	tempDir      string
	logger       *slog.Logger
}

// Option configures an Unpacker.
type Option func(*options)

// WithPackage sets the package directory segment an entry must contain.
func WithPackage(pkg string) Option {
	return func(o *options) {
		o.pkg = pkg
	}
}

// WithStorageEntry sets the path suffix an entry must end with.
func WithStorageEntry(entry string) Option {
	return func(o *options) {
		o.storageEntry = entry
	}
}

// WithMaxEntrySize sets the largest entry Extract will write.
func WithMaxEntrySize(n int64) Option {
	return func(o *options) {
		o.maxEntrySize = n
	}
}

// WithTempDir sets the parent of extraction directories. Empty selects
// os.TempDir.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Unpacker extracts the storage entry from backup archives.
type Unpacker struct {
	opts options
}

// New creates an Unpacker with the given options.
func New(opts ...Option) *Unpacker {
	o := options{
		pkg:          DefaultPackage,
		storageEntry: DefaultStorageEntry,
		maxEntrySize: DefaultMaxEntrySize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.storageEntry = strings.Trim(path.Clean(o.storageEntry), "/")

	return &Unpacker{opts: o}
}

// Extracted is a storage file written to a private temporary directory.
type Extracted struct {
	// Path is the extracted file on disk.
	Path string
	// Entry is the archive member it was read from.
	Entry string
	Size  int64

	dir string
}

// Cleanup removes the extracted file and its directory.
func (e *Extracted) Cleanup() error {
	if e == nil || e.dir == "" {
		return nil
	}
	return os.RemoveAll(e.dir)
}

// Extract finds the single storage entry in the archive at archivePath and
// writes it to a new temporary directory. The caller must call Cleanup on the
// result. Every failure is an *Error matching ErrUnarchiveFailure, and nothing
// is left on disk when Extract fails.
func (u *Unpacker) Extract(ctx context.Context, archivePath string) (*Extracted, error) {
	fail := func(op string, err error) error {
		return &Error{Path: archivePath, Op: op, Err: err}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fail("open archive", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, fsutil.SniffLen)
	head, err := br.Peek(fsutil.SniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fail("read archive header", err)
	}
	if mime := fsutil.SniffMIME(head); mime != fsutil.MIMEGzip {
		return nil, fail("read archive header", fmt.Errorf("%w: detected %q", ErrNotGzip, mime))
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fail("open gzip stream", err)
	}
	defer zr.Close()

	var out *Extracted
	cleanup := func() {
		if out != nil {
			out.Cleanup()
		}
	}

	tr := tar.NewReader(zr)
	for {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, fail("read archive", err)
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cleanup()
			return nil, fail("read archive", err)
		}

		name, ok := u.match(hdr)
		if !ok {
			continue
		}

		if out != nil {
			cleanup()
			return nil, fail("locate storage entry",
				fmt.Errorf("%w: %s and %s", ErrMultipleEntries, out.Entry, name))
		}

		out, err = u.write(tr, hdr, name)
		if err != nil {
			cleanup()
			return nil, fail("extract "+name, err)
		}
	}

	// The trailer checksum is only verified once the gzip stream hits EOF.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		cleanup()
		return nil, fail("verify gzip stream", err)
	}

	if out == nil {
		return nil, fail("locate storage entry",
			fmt.Errorf("%w: no regular file under %s ending in %s", ErrEntryNotFound, u.opts.pkg, u.opts.storageEntry))
	}

	u.opts.logger.Debug("storage entry extracted",
		"archive", archivePath,
		"entry", out.Entry,
		"size", humanize.IBytes(uint64(out.Size)),
		"path", out.Path)

	return out, nil
}

// match reports whether hdr is the storage entry and returns its cleaned name.
func (u *Unpacker) match(hdr *tar.Header) (string, bool) {
	if !hdr.FileInfo().Mode().IsRegular() {
		return "", false
	}

	name := strings.TrimPrefix(path.Clean("/"+hdr.Name), "/")
	if !strings.HasSuffix("/"+name, "/"+u.opts.storageEntry) {
		return "", false
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == u.opts.pkg {
			return name, true
		}
	}
	return "", false
}

func (u *Unpacker) write(r io.Reader, hdr *tar.Header, name string) (*Extracted, error) {
	if hdr.Size > u.opts.maxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %s",
			ErrEntryTooLarge, humanize.IBytes(uint64(hdr.Size)), humanize.IBytes(uint64(u.opts.maxEntrySize)))
	}

	dir, err := os.MkdirTemp(u.opts.tempDir, "restore2fa-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir; %w", err)
	}
	out := &Extracted{Entry: name, dir: dir, Path: filepath.Join(dir, path.Base(name))}

	f, err := os.OpenFile(out.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		out.Cleanup()
		return nil, fmt.Errorf("failed to create file; %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, u.opts.maxEntrySize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > u.opts.maxEntrySize {
		err = fmt.Errorf("%w: more than %s", ErrEntryTooLarge, humanize.IBytes(uint64(u.opts.maxEntrySize)))
	}
	if err != nil {
		out.Cleanup()
		return nil, err
	}

	out.Size = n
	return out, nil
}
