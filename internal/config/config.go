// Package config loads groomer configuration from config.yaml and the
// environment. Credentials come from the environment by preference so they
// never need to live in a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables recognized for Jira access. These take precedence
// over config.yaml values.
const (
	EnvURL       = "JIRA_URL"
	EnvToken     = "JIRA_TOKEN"
	EnvAPIToken  = "JIRA_API_TOKEN"
	EnvUsername  = "JIRA_USERNAME"
	EnvProject   = "GROOMER_PROJECT"
	EnvConfigDir = "GROOMER_CONFIG_DIR"
)

// Config holds everything groomer needs to reach a Jira instance and apply
// hygiene policy.
type Config struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	Project  string `mapstructure:"project"`

	// DaysThreshold is the default staleness threshold; individual runs can
	// override it.
	DaysThreshold int `mapstructure:"days-threshold"`

	// ExcludeStatuses overrides the built-in terminal-status set when
	// non-empty. The override replaces the default set, it is not merged.
	ExcludeStatuses []string `mapstructure:"exclude-statuses"`
}

// Initialize sets up the viper singleton: config file discovery plus
// environment binding. Safe to call when no config file exists; the
// environment alone is a complete configuration.
func Initialize() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(ConfigDir())

	viper.SetEnvPrefix("GROOMER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// ConfigDir returns the directory searched for config.yaml:
// $GROOMER_CONFIG_DIR when set, otherwise ~/.groomer.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".groomer")
}

// Load resolves the effective configuration: environment first, then the
// viper-backed config file, then a direct read of config.yaml. The direct
// read backstops viper so Load resolves the file even when Initialize has
// not run.
func Load() *Config {
	local := LoadLocalConfig(ConfigDir())
	cfg := &Config{
		URL:           firstNonEmpty(os.Getenv(EnvURL), viper.GetString("url"), local.URL),
		Username:      firstNonEmpty(os.Getenv(EnvUsername), viper.GetString("username"), local.Username),
		Token:         firstNonEmpty(os.Getenv(EnvToken), os.Getenv(EnvAPIToken), viper.GetString("token"), local.Token),
		Project:       firstNonEmpty(os.Getenv(EnvProject), viper.GetString("project"), local.Project),
		DaysThreshold: viper.GetInt("days-threshold"),
	}
	if cfg.DaysThreshold == 0 {
		cfg.DaysThreshold = local.DaysThreshold
	}
	cfg.ExcludeStatuses = viper.GetStringSlice("exclude-statuses")
	if len(cfg.ExcludeStatuses) == 0 {
		cfg.ExcludeStatuses = local.ExcludeStatuses
	}
	return cfg
}

// Validate checks that the configuration is sufficient to reach Jira.
// Missing credentials surface here, before any network call, with
// remediation steps in the message.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("Jira URL not configured\nSet %s or add url: to %s", EnvURL, filepath.Join(ConfigDir(), "config.yaml"))
	}
	if c.Token == "" {
		return fmt.Errorf("Jira token not configured\nSet %s (Bearer personal access token) or %s", EnvToken, EnvAPIToken)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
