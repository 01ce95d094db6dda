// Package db implements the db command.
package db

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/cmdutil"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
)

var dbFlags cmdutil.ExportFlags

// DBCmd exports QR codes from an authenticator databases file.
var DBCmd = &cobra.Command{
	Use:   "db <path>",
	Short: "Export QR codes from a databases file",
	Long: "Export QR codes from the authenticator's databases file.\n\n" +
		"The file is the SQLite database copied out of the app's data directory. " +
		"It is opened read-only. Both the current preference layout and the legacy " +
		"accounts table are understood.",
	Example: `  # Export from a copied databases file
  restore2fa db databases

  # Larger images
  restore2fa db databases --size 512`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateDB,
	RunE:    runDB,
}

func init() {
	dbFlags.Register(DBCmd)
}

func validateDB(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	dbFlags.Apply(cmd)
	return nil
}

func runDB(cmd *cobra.Command, args []string) error {
	return cmdutil.Export(cmd, cmdutil.Input{Source: picker.SourceDatabase, Path: args[0]})
}
