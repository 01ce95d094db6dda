package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/cmd/archive"
	configcmd "github.com/leefowlercu/restore2fa/cmd/config"
	"github.com/leefowlercu/restore2fa/cmd/db"
	"github.com/leefowlercu/restore2fa/cmd/list"
	versioncmd "github.com/leefowlercu/restore2fa/cmd/version"
	"github.com/leefowlercu/restore2fa/internal/cmdutil"
	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/logging"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
	"github.com/leefowlercu/restore2fa/internal/version"
)

// logManager is created in init() and upgraded once config is loaded.
var logManager *logging.Manager

var rootFlags cmdutil.ExportFlags

var restore2faCmd = &cobra.Command{
	Use:   "restore2fa [archive]",
	Short: "Recover 2FA secrets from an authenticator backup as QR codes",
	Long: "Recover two-factor authentication secrets from a Google Authenticator backup.\n\n" +
		"The accounts are read from an app-data backup archive (.tar.gz) or from the " +
		"authenticator's \"databases\" SQLite file, and each one is exported as a QR code " +
		"image that any authenticator app can scan.\n\n" +
		"With no arguments the working directory is searched for an archive, then for a " +
		"databases file. If neither is found you are asked which one to use.",
	Example: `  # Recover from an archive
  restore2fa com.google.android.apps.authenticator2.tar.gz

  # Search the working directory, or ask
  restore2fa

  # Write PNG images somewhere else
  restore2fa backup.tar.gz --format png -o ~/qr`,
	Args:              cobra.MaximumNArgs(1),
	Version:           version.Get().Short(),
	PersistentPreRunE: runInitialize,
	PreRunE:           validateRoot,
	RunE:              runRoot,
}

func init() {
	logManager = logging.NewManager()

	rootFlags.Register(restore2faCmd)

	restore2faCmd.AddCommand(archive.ArchiveCmd)
	restore2faCmd.AddCommand(db.DBCmd)
	restore2faCmd.AddCommand(list.ListCmd)
	restore2faCmd.AddCommand(configcmd.ConfigCmd)
	restore2faCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()
	slog.SetDefault(logger)

	if err := config.Init(); err != nil {
		return err
	}

	logFile := config.GetPath("log_file")
	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	err := logManager.Upgrade(logFile, level,
		logging.WithMaxSizeMB(config.GetInt("log_max_size_mb")),
		logging.WithMaxBackups(config.GetInt("log_max_backups")),
		logging.WithConsoleLevel(slog.LevelWarn),
		logging.WithConsole(cmd.ErrOrStderr()),
	)
	if err != nil {
		logManager.SetLevel(level)
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	logger.Debug("configuration loaded", "config_file", config.ConfigFilePath(), "command", cmd.CommandPath())
	return nil
}

func validateRoot(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	rootFlags.Apply(cmd)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return cmdutil.Export(cmd, cmdutil.Input{Source: picker.SourceArchive, Path: args[0]})
	}

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	in, ok, err := cmdutil.Discover(".", cfg.Discovery)
	if err != nil {
		return err
	}
	if ok {
		slog.Info("input discovered", "source", in.Source, "path", in.Path)
		return cmdutil.Export(cmd, in)
	}

	res, err := picker.Run(picker.Selection{
		DefaultArchive:  cfg.Discovery.DefaultArchive,
		DefaultDatabase: cfg.Discovery.DatabaseName,
	}, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to run picker; %w", err)
	}
	if res.Cancelled || !res.Confirmed {
		return nil
	}

	return cmdutil.Export(cmd, cmdutil.Input{Source: res.Selection.Source, Path: res.Selection.Path})
}

// Execute runs the root command. Errors whose message was already printed
// are not repeated.
func Execute() error {
	restore2faCmd.SilenceErrors = true
	restore2faCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := restore2faCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var reported *cmdutil.ReportedError
	if errors.As(err, &reported) {
		return err
	}

	cmd, _, _ := restore2faCmd.Find(os.Args[1:])
	if cmd == nil {
		cmd = restore2faCmd
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if !cmd.SilenceUsage {
		fmt.Fprintln(os.Stderr)
		cmd.SetOut(os.Stderr)
		_ = cmd.Usage()
	}

	return err
}
