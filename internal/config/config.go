// Package config loads the server configuration from a YAML file.
// Flags on the CLI override file values; everything has a usable default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Redis configures the optional audit journal.
type Redis struct {
	Enabled      bool   `yaml:"enabled"`
	Address      string `yaml:"address"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	JournalKey   string `yaml:"journal_key"`
	JournalLimit int64  `yaml:"journal_limit"`
}

// Asset seeds one asset in the built-in memory environment, mapping graph
// names to their domain kind (logic, shading, motion, layout, effect).
type Asset struct {
	Name   string            `yaml:"name"`
	Graphs map[string]string `yaml:"graphs"`
}

// Config is the full server configuration.
type Config struct {
	// Listen is the TCP command endpoint.
	Listen string `yaml:"listen"`
	// HTTPListen enables the HTTP adapter when non-empty.
	HTTPListen string `yaml:"http_listen"`
	LogLevel   string `yaml:"log_level"`
	// MaxOperations is the server-side ceiling on a batch's max_operations.
	MaxOperations int     `yaml:"max_operations"`
	Redis         Redis   `yaml:"redis"`
	Assets        []Asset `yaml:"assets"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:        "127.0.0.1:9845",
		HTTPListen:    "",
		LogLevel:      "info",
		MaxOperations: 500,
		Redis: Redis{
			Address:      "localhost:6379",
			JournalKey:   "rigwire:audit",
			JournalLimit: 1000,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		return nil, fmt.Errorf("config %s: listen must not be empty", path)
	}
	if cfg.MaxOperations <= 0 {
		return nil, fmt.Errorf("config %s: max_operations must be positive", path)
	}
	return cfg, nil
}
