package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings for the log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
)

// FileOption configures the log file sink installed by Upgrade.
type FileOption func(*fileConfig)

type fileConfig struct {
	maxSizeMB    int
	maxBackups   int
	consoleLevel slog.Leveler
	console      io.Writer
}

// WithMaxSizeMB sets the size in megabytes at which the log file is rotated.
func WithMaxSizeMB(mb int) FileOption {
	return func(c *fileConfig) {
		if mb > 0 {
			c.maxSizeMB = mb
		}
	}
}

// WithMaxBackups sets how many rotated log files are kept.
func WithMaxBackups(n int) FileOption {
	return func(c *fileConfig) {
		if n >= 0 {
			c.maxBackups = n
		}
	}
}

// WithConsoleLevel sets a separate minimum level for stderr output. By default
// stderr follows the manager level.
func WithConsoleLevel(level slog.Leveler) FileOption {
	return func(c *fileConfig) {
		c.consoleLevel = level
	}
}

// WithConsole redirects console output, mainly for tests.
func WithConsole(w io.Writer) FileOption {
	return func(c *fileConfig) {
		c.console = w
	}
}

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	logFile *lumberjack.Logger
	level   *slog.LevelVar
	mu      sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes only to stderr using text format.
// Call Upgrade() after config is available to enable file logging.
func NewManager() *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	opts := &slog.HandlerOptions{Level: level}
	bootstrap := slog.NewTextHandler(os.Stderr, opts)

	handler := NewSwappableHandler(bootstrap)

	return &Manager{
		handler: handler,
		logger:  slog.New(handler),
		level:   level,
	}
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode (stderr-only) to full mode
// (stderr text + rotated JSON file). The file and its directory are created
// up front so an unusable path is reported here rather than on first write.
func (m *Manager) Upgrade(logFilePath string, level slog.Level, opts ...FileOption) error {
	cfg := fileConfig{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		console:    os.Stderr,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}

	file := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.maxSizeMB,
		MaxBackups: cfg.maxBackups,
	}

	if m.logFile != nil {
		_ = m.logFile.Close()
	}
	m.logFile = file

	m.level.Set(level)

	consoleLevel := cfg.consoleLevel
	if consoleLevel == nil {
		consoleLevel = m.level
	}

	fullHandler := slogmulti.Fanout(
		slog.NewTextHandler(cfg.console, &slog.HandlerOptions{Level: consoleLevel}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: m.level}),
	)

	m.handler.Swap(fullHandler)

	return nil
}

// SetLevel changes the log level at runtime.
// Applies immediately to all future log calls.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close closes the log file. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logFile != nil {
		err := m.logFile.Close()
		m.logFile = nil
		return err
	}
	return nil
}
