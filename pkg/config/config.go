package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the potterctl configuration.
type Config struct {
	ServerURL    string `yaml:"server_url" json:"server_url"`
	AuthToken    string `yaml:"auth_token" json:"auth_token"`
	OutputFormat string `yaml:"output_format" json:"output_format"`
}

// DefaultPath returns the default config file path: ~/.honeypotter/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".honeypotter", "config.yaml")
	}
	return filepath.Join(home, ".honeypotter", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns a default Config with no error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerURL:    "http://localhost:8000/api",
		OutputFormat: "table",
	}

	// Check permissions before reading: warn if the config file is
	// world-readable, since it may contain an auth_token.
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		fmt.Fprintf(os.Stderr,
			"warning: config file %s has permissions %04o — expected 0600. "+
				"Auth tokens may be exposed to other users.\n",
			path, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating the parent
// directory when needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
