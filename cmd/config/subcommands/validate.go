package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate the configuration",
	Long: "Validate the configuration.\n\n" +
		"Checks the loaded config file, or the file at path, for syntax errors and " +
		"invalid values. Environment overrides are applied before checking. " +
		"Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the active configuration
  restore2fa config validate

  # Validate a file before installing it
  restore2fa config validate ./config.toml`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	configPath := config.ConfigFilePath()
	if len(args) == 1 {
		configPath = args[0]
	}

	if configPath == "" {
		if _, err := config.Get(); err != nil {
			return reportInvalid(cmd, err)
		}
		fmt.Fprintln(out, "No configuration file found.")
		fmt.Fprintln(out, "Using default configuration values.")
		return nil
	}

	if !config.ConfigExistsAt(configPath) {
		return fmt.Errorf("configuration file %s does not exist", configPath)
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		return reportInvalid(cmd, err)
	}

	fmt.Fprintf(out, "Configuration is valid: %s\n", configPath)
	return nil
}

func reportInvalid(cmd *cobra.Command, err error) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration validation failed:")

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fmt.Fprintf(out, "  %v\n", e)
		}
	} else {
		fmt.Fprintf(out, "  %v\n", err)
	}
	return errors.New("configuration is invalid")
}
