package subcommands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/config"
)

var (
	resetConfirm bool
)

// ResetCmd writes the default configuration over the current one.
var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to default values",
	Long: "Reset configuration to default values.\n\n" +
		"The current config file is backed up next to itself and replaced with a " +
		"file holding every default value. Use --confirm to skip the confirmation prompt.",
	Example: `  # Reset configuration (prompts for confirmation)
  restore2fa config reset

  # Reset configuration without confirmation
  restore2fa config reset --confirm`,
	Args:    cobra.NoArgs,
	PreRunE: validateReset,
	RunE:    runReset,
}

func init() {
	ResetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "Skip confirmation prompt")
}

func validateReset(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.ConfigPath()
	exists := config.ConfigExistsAt(configPath)

	if !resetConfirm {
		if exists {
			fmt.Fprintf(out, "This will replace %s with the default configuration.\n", configPath)
		} else {
			fmt.Fprintf(out, "This will write the default configuration to %s.\n", configPath)
		}
		fmt.Fprint(out, "Are you sure? [y/N]: ")

		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Reset cancelled.")
			return nil
		}
	}

	if exists {
		backupPath := fmt.Sprintf("%s.backup.%d", configPath, time.Now().Unix())
		if err := copyFile(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to create backup; %w", err)
		}
		fmt.Fprintf(out, "Backup created: %s\n", backupPath)
	}

	if err := writeDefaults(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration reset to defaults: %s\n", configPath)
	return nil
}

// writeDefaults writes the default values to the loaded config file, or to the
// default location when none was loaded.
func writeDefaults(configPath string) error {
	defaults := config.LoadWithDefaults()
	if config.ConfigFilePath() == "" {
		return config.WriteDefault(defaults)
	}
	return config.Write(defaults, configPath)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
