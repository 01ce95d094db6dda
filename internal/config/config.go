// Package config loads restore2fa settings from config.yaml, RESTORE2FA_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RESTORE2FA_EXPORT_DIR.
const EnvPrefix = "RESTORE2FA"

// EnvConfigDir names the environment variable that overrides the config directory.
const EnvConfigDir = EnvPrefix + "_CONFIG_DIR"

// configFilePath stores the path to the loaded config file
var configFilePath string

// Init initializes the configuration subsystem.
// It searches for configuration files in priority order:
//  1. Directory specified by RESTORE2FA_CONFIG_DIR environment variable
//  2. ~/.config/restore2fa/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init() error {
	v := viper.GetViper()
	configure(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if envPath := os.Getenv(EnvConfigDir); envPath != "" {
		v.AddConfigPath(envPath)
	}
	if home := resolveHomeDir(); home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "restore2fa"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			configFilePath = ""
			return nil
		}
		return fmt.Errorf("failed to read config; %w", err)
	}

	configFilePath = v.ConfigFileUsed()
	return nil
}

// configure applies the settings shared by every viper instance.
func configure(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

// Get returns the typed, validated configuration built from the state
// loaded by Init.
func Get() (*Config, error) {
	return unmarshalConfig(viper.GetViper())
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	configFilePath = ""
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set sets a value for the given key, overriding defaults and config file values.
// Command-line flags use it to take precedence over the file.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return ExpandPath(viper.GetString(key))
}

// GetAllSettings returns all configuration settings as a map.
func GetAllSettings() map[string]any {
	return viper.AllSettings()
}

// ExpandPath expands a leading ~ in path to the user's home directory.
// Only "~" alone or "~/..." is expanded; "~user" is returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home := resolveHomeDir()
	if home == "" {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}
