package fsutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MIME types the recovery pipeline cares about.
const (
	MIMEGzip    = "application/gzip"
	MIMESQLite  = "application/vnd.sqlite3"
	MIMEUnknown = "application/octet-stream"
)

// SniffLen is the number of leading bytes SniffMIME inspects.
const SniffLen = 512

var sqliteMagic = []byte("SQLite format 3\x00")

// HashFile computes the SHA-256 hash of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// SniffFile reads the head of path and returns its sniffed MIME type.
func SniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	return SniffMIME(head[:n]), nil
}

// SniffMIME determines a MIME type from content alone. Gzip is normalized to
// MIMEGzip and SQLite 3 databases are recognized by their header.
func SniffMIME(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if bytes.HasPrefix(content, sqliteMagic) {
		return MIMESQLite
	}

	sniffed := http.DetectContentType(content)
	if idx := strings.Index(sniffed, ";"); idx != -1 {
		sniffed = strings.TrimSpace(sniffed[:idx])
	}
	if sniffed == "application/x-gzip" {
		return MIMEGzip
	}
	return sniffed
}

// MIMEFromExtension returns a best-effort MIME type for a file extension.
// The extension may be provided with or without a leading dot.
func MIMEFromExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extensionToMIME(ext)
}

// Glob returns the regular files in dir matching pattern, in lexical order.
func Glob(dir, pattern string) ([]string, error) {
	matches, err := fs.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range matches {
		p := filepath.Join(dir, m)
		if FileExists(p) {
			files = append(files, p)
		}
	}
	return files, nil
}

func extensionToMIME(ext string) string {
	mimeMap := map[string]string{
		// Images
		".png":  "image/png",
		".bmp":  "image/bmp",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",

		// Archives
		".tar": "application/x-tar",
		".gz":  MIMEGzip,
		".tgz": MIMEGzip,
		".zip": "application/zip",

		// Databases
		".db":      MIMESQLite,
		".sqlite":  MIMESQLite,
		".sqlite3": MIMESQLite,

		// Config
		".yaml": "text/yaml",
		".yml":  "text/yaml",
		".toml": "text/toml",
		".json": "application/json",
	}

	return mimeMap[ext]
}
