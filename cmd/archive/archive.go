// Package archive implements the archive command.
package archive

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/cmdutil"
	"github.com/leefowlercu/restore2fa/internal/tui/picker"
)

var archiveFlags cmdutil.ExportFlags

// ArchiveCmd exports QR codes from an app-data backup archive.
var ArchiveCmd = &cobra.Command{
	Use:   "archive <path>",
	Short: "Export QR codes from a backup archive",
	Long: "Export QR codes from a backup archive.\n\n" +
		"The archive is a gzip-compressed tar of the authenticator's app data, as " +
		"produced by Android backup tools. Its databases file is extracted to a " +
		"private temporary directory, read, and removed again.",
	Example: `  # Export as BMP into ./Export
  restore2fa archive com.google.android.apps.authenticator2.tar.gz

  # Export as PNG into another directory
  restore2fa archive backup.tar.gz --format png --output ~/qr`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateArchive,
	RunE:    runArchive,
}

func init() {
	archiveFlags.Register(ArchiveCmd)
}

func validateArchive(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	archiveFlags.Apply(cmd)
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	return cmdutil.Export(cmd, cmdutil.Input{Source: picker.SourceArchive, Path: args[0]})
}
