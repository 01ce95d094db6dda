// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage restore2fa configuration",
	Long: "Manage restore2fa configuration.\n\n" +
		"Configuration is read from config.yaml in $RESTORE2FA_CONFIG_DIR, " +
		"~/.config/restore2fa or the working directory. Every key can also be set " +
		"with a RESTORE2FA_ environment variable, e.g. RESTORE2FA_EXPORT_DIR.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.EditCmd)
	ConfigCmd.AddCommand(subcommands.ResetCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
