package subcommands

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/config"
)

// EditCmd opens the configuration file in an editor.
var EditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file in your default editor",
	Long: "Edit the configuration file in your default editor.\n\n" +
		"Opens the config file in $EDITOR, then $VISUAL, then the first of vim, vi " +
		"or nano found on PATH. A file with the default values is written first " +
		"if none exists. The result is validated after the editor exits.",
	Example: `  # Edit configuration with default editor
  restore2fa config edit

  # Edit with a specific editor
  EDITOR=code restore2fa config edit`,
	Args:    cobra.NoArgs,
	PreRunE: validateEdit,
	RunE:    runEdit,
}

func validateEdit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.ConfigPath()

	if config.ConfigFilePath() == "" && !config.ConfigExists() {
		if err := config.WriteDefault(config.LoadWithDefaults()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Default configuration written: %s\n", configPath)
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found; set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error; %w", err)
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		return reportInvalid(cmd, err)
	}

	fmt.Fprintf(out, "Configuration saved: %s\n", configPath)
	return nil
}

func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}

	for _, editor := range []string{"vim", "vi", "nano"} {
		if _, err := exec.LookPath(editor); err == nil {
			return editor
		}
	}

	return ""
}
