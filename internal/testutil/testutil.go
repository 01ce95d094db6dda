// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/restore2fa/internal/config"
)

// TestEnv provides an isolated test environment with its own config directory.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	ExportDir string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, ensuring complete
// isolation even when tests run in parallel across packages.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	base := t.TempDir()
	configDir := filepath.Join(base, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}
	exportDir := filepath.Join(base, "Export")

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("HOME", base)
	t.Setenv("RESTORE2FA_CONFIG_DIR", configDir)
	t.Setenv("RESTORE2FA_LOG_FILE", filepath.Join(configDir, "restore2fa.log"))
	t.Setenv("RESTORE2FA_EXPORT_DIR", exportDir)

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	env := &TestEnv{
		t:         t,
		ConfigDir: configDir,
		ExportDir: exportDir,
	}

	t.Cleanup(func() {
		config.Reset()
	})

	return env
}

// LogPath returns the log file path configured for the test environment.
func (e *TestEnv) LogPath() string {
	return filepath.Join(e.ConfigDir, "restore2fa.log")
}

// CreateTestDir creates a test directory within the test environment's temp space.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	// Use a separate temp dir for test data (not inside config dir)
	testDataDir := filepath.Join(e.t.TempDir(), "testdata", name)
	if err := os.MkdirAll(testDataDir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return testDataDir
}

// CreateTestFile creates a test file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}
