package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/restore2fa/internal/archive"
	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/otp"
	"github.com/leefowlercu/restore2fa/internal/storage"
	"github.com/leefowlercu/restore2fa/internal/testutil"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing file", &MissingFileError{Path: "backup.tar.gz"}, "File backup.tar.gz does not exist."},
		{"wrapped missing file", fmt.Errorf("run; %w", &MissingFileError{Path: "databases"}), "File databases does not exist."},
		{"archive", &archive.Error{Path: "a.tar.gz", Op: "open archive", Err: os.ErrNotExist}, MsgArchiveFailure},
		{"storage", storage.NewUnrecognizedError("databases", "no table", nil), MsgDatabaseUnrecognized},
		{"other", errors.New("boom"), MsgUnexpected},
		{"reported", &ReportedError{Err: errors.New("boom")}, MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportedError_Unwraps(t *testing.T) {
	inner := storage.NewUnrecognizedError("databases", "empty", nil)
	err := &ReportedError{Err: inner}

	if !errors.Is(err, storage.ErrDatabaseUnrecognized) {
		t.Error("ReportedError should unwrap to the reported cause")
	}
	if err.Error() != inner.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), inner.Error())
	}
}

func TestExportSummary(t *testing.T) {
	if got := ExportSummary(3, "Export"); got != "3 keys exported to Export" {
		t.Errorf("ExportSummary(3) = %q", got)
	}
	if got := ExportSummary(1, "out"); got != "1 key exported to out" {
		t.Errorf("ExportSummary(1) = %q", got)
	}
}

func TestDiscover(t *testing.T) {
	cfg := config.NewDefaultConfig().Discovery

	t.Run("empty dir", func(t *testing.T) {
		_, ok, err := Discover(t.TempDir(), cfg)
		if err != nil || ok {
			t.Errorf("Discover() = ok %v err %v, want nothing found", ok, err)
		}
	})

	t.Run("database only", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "databases"))

		in, ok, err := Discover(dir, cfg)
		if err != nil || !ok {
			t.Fatalf("Discover() = ok %v err %v", ok, err)
		}
		if in.Source != picker.SourceDatabase || in.Path != filepath.Join(dir, "databases") {
			t.Errorf("Discover() = %+v", in)
		}
	})

	t.Run("archive wins over database", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "databases"))
		writeFile(t, filepath.Join(dir, "b.tar.gz"))
		writeFile(t, filepath.Join(dir, "a.tar.gz"))

		in, ok, err := Discover(dir, cfg)
		if err != nil || !ok {
			t.Fatalf("Discover() = ok %v err %v", ok, err)
		}
		if in.Source != picker.SourceArchive || in.Path != filepath.Join(dir, "a.tar.gz") {
			t.Errorf("Discover() = %+v, want first archive", in)
		}
	})

	t.Run("directory named like database is ignored", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "databases"), 0700); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := Discover(dir, cfg); ok {
			t.Error("a directory should not be discovered as a database")
		}
	})

	t.Run("bad glob", func(t *testing.T) {
		bad := cfg
		bad.ArchiveGlob = "["
		if _, _, err := Discover(t.TempDir(), bad); err == nil {
			t.Error("expected error for malformed glob")
		}
	})
}

func TestCheckInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "databases")

	var missing *MissingFileError
	if err := CheckInput(path); !errors.As(err, &missing) || missing.Path != path {
		t.Errorf("CheckInput() = %v, want MissingFileError", err)
	}

	writeFile(t, path)
	if err := CheckInput(path); err != nil {
		t.Errorf("CheckInput() = %v, want nil", err)
	}
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ResolvePath("~/Export/../Export")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != filepath.Join(home, "Export") {
		t.Errorf("ResolvePath() = %q", got)
	}

	if got, _ := ResolvePath(""); got != "" {
		t.Errorf("ResolvePath(\"\") = %q, want empty", got)
	}
}

func TestNewCoordinator_InvalidRecoveryLevel(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Export.RecoveryLevel = "ultra"

	if _, err := NewCoordinator(&cfg, discardLogger()); err == nil {
		t.Error("expected error for unknown recovery level")
	}
}

func TestNewCoordinator_UsesStorageLayout(t *testing.T) {
	secret, err := otp.DecodeSecret("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatal(err)
	}
	value := testutil.PackedAccount{Secret: secret, Name: "alice", Type: 2, Digits: 1, Period: 30}.Marshal()

	db := testutil.CreateSQLiteDB(t, filepath.Join(t.TempDir(), "databases"),
		`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB)`,
		fmt.Sprintf(`INSERT INTO kv (key, value) VALUES ('token.0', X'%x')`, value),
	)

	cfg := config.NewDefaultConfig()
	cfg.Storage = config.StorageConfig{Table: "kv", KeyPrefix: "token"}

	c, err := NewCoordinator(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}

	res, err := c.FromStorageFile(context.Background(), db)
	if err != nil {
		t.Fatalf("FromStorageFile() error = %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Label != "alice" {
		t.Errorf("Items = %+v, want one item for alice", res.Items)
	}
}

func TestExportOptions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.NewDefaultConfig()
	cfg.Export.Dir = "~/qr"
	cfg.Export.Format = "png"

	opts, err := ExportOptions(&cfg)
	if err != nil {
		t.Fatalf("ExportOptions() error = %v", err)
	}
	if opts.Dir != filepath.Join(home, "qr") || opts.Format != "png" {
		t.Errorf("ExportOptions() = %+v", opts)
	}
}

func TestExportOptions_RelativeDir(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)

	cfg := config.NewDefaultConfig()
	cfg.Export.Dir = "out/../qr"

	opts, err := ExportOptions(&cfg)
	if err != nil {
		t.Fatalf("ExportOptions() error = %v", err)
	}
	if opts.Dir != filepath.Join(work, "qr") {
		t.Errorf("Dir = %q, want %q", opts.Dir, filepath.Join(work, "qr"))
	}
}

func TestResolveInput(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	writeFile(t, filepath.Join(work, "databases"))

	in, err := resolveInput(Input{Source: picker.SourceDatabase, Path: "databases"})
	if err != nil {
		t.Fatalf("resolveInput() error = %v", err)
	}
	if in.Path != filepath.Join(work, "databases") || in.Source != picker.SourceDatabase {
		t.Errorf("resolveInput() = %+v", in)
	}

	var missing *MissingFileError
	_, err = resolveInput(Input{Path: "nope.tar.gz"})
	if !errors.As(err, &missing) || missing.Path != "nope.tar.gz" {
		t.Errorf("resolveInput() error = %v, want MissingFileError for the given path", err)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
}
