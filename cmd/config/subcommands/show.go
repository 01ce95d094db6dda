package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/restore2fa/internal/config"
)

var (
	showRaw    bool
	showFormat string
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the effective configuration with defaults and environment overrides " +
		"applied. Use --raw to print the config file as written, or --format toml " +
		"to render the effective configuration as TOML.",
	Example: `  # Show effective configuration
  restore2fa config show

  # Show it as TOML
  restore2fa config show --format toml

  # Show only the config file
  restore2fa config show --raw`,
	Args:    cobra.NoArgs,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the config file contents (no defaults)")
	ShowCmd.Flags().StringVar(&showFormat, "format", "yaml", "Output format: yaml or toml")
}

func validateShow(cmd *cobra.Command, args []string) error {
	if showFormat != "yaml" && showFormat != "toml" {
		return fmt.Errorf("invalid --format %q; must be yaml or toml", showFormat)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd)
	}
	return showEffectiveConfig(cmd)
}

func showRawConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	configPath := config.ConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "# No configuration file found")
			fmt.Fprintf(out, "# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Fprintf(out, "# Configuration file: %s\n", configPath)
	fmt.Fprintln(out, string(data))
	return nil
}

func showEffectiveConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	var (
		data []byte
		err  error
	)
	if cfg, cerr := config.Get(); cerr == nil {
		data, err = config.Encode(cfg, showFormat)
	} else if showFormat == "yaml" {
		// Invalid values still show, so they can be found and fixed.
		data, err = yaml.Marshal(config.GetAllSettings())
	} else {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("failed to format configuration; %w", err)
	}

	fmt.Fprintln(out, "# Effective configuration (with defaults)")
	if path := config.ConfigFilePath(); path != "" {
		fmt.Fprintf(out, "# Config file: %s\n", path)
	} else {
		fmt.Fprintln(out, "# Config file: none")
	}
	fmt.Fprintln(out, string(data))
	return nil
}
