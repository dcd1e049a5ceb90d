package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the config.yaml schema read directly from disk rather than
// through the viper singleton. Load consults a direct read as its last
// fallback, so configuration resolves even when Initialize has not run;
// tests point GROOMER_CONFIG_DIR at a fixture directory the same way.
type LocalConfig struct {
	URL             string   `yaml:"url"`
	Username        string   `yaml:"username"`
	Token           string   `yaml:"token"`
	Project         string   `yaml:"project"`
	DaysThreshold   int      `yaml:"days-threshold"`
	ExcludeStatuses []string `yaml:"exclude-statuses"`
}

// LoadLocalConfig reads and parses config.yaml from the given directory.
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't
// be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	configPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from config dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}
