package fsutil

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	content := []byte("hash me")
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	hashFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := sha256.Sum256(content)
	if want := hex.EncodeToString(sum[:]); hashFile != want {
		t.Errorf("HashFile = %q, want %q", hashFile, want)
	}
}

func TestSniffMIME(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte("payload"))
	zw.Close()

	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{"empty", nil, ""},
		{"gzip", gz.Bytes(), MIMEGzip},
		{"sqlite", append([]byte("SQLite format 3\x00"), make([]byte, 84)...), MIMESQLite},
		{"text", []byte("hello world"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffMIME(tt.content); got != tt.expected {
				t.Errorf("SniffMIME() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSniffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	if err := os.WriteFile(path, []byte("SQLite format 3\x00"), 0600); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	got, err := SniffFile(path)
	if err != nil {
		t.Fatalf("SniffFile failed: %v", err)
	}
	if got != MIMESQLite {
		t.Errorf("SniffFile() = %q, want %q", got, MIMESQLite)
	}

	if _, err := SniffFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMIMEFromExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".png", "image/png"},
		{"bmp", "image/bmp"},
		{".unknown", ""},
	}

	for _, tt := range tests {
		result := MIMEFromExtension(tt.ext)
		if result != tt.expected {
			t.Errorf("MIMEFromExtension(%q) = %q, want %q", tt.ext, result, tt.expected)
		}
	}
}

func TestFileExistsAndGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.tar.gz", "a.tar.gz", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatalf("write file failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.tar.gz"), 0700); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if !FileExists(filepath.Join(dir, "notes.txt")) {
		t.Error("FileExists(notes.txt) = false, want true")
	}
	if FileExists(filepath.Join(dir, "dir.tar.gz")) {
		t.Error("FileExists(directory) = true, want false")
	}

	got, err := Glob(dir, "*.tar.gz")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.tar.gz"), filepath.Join(dir, "b.tar.gz")}
	if len(got) != len(want) {
		t.Fatalf("Glob() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Glob()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
