// Package config loads constellate's YAML configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DSPConfig bundles the tuning parameters that must agree between
// enrollment and query. Changing these for an existing catalog
// invalidates every fingerprint already stored in it.
type DSPConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	NFFT       int     `yaml:"nfft"`
	Overlap    int     `yaml:"overlap"`
	FracCut    float64 `yaml:"frac_cut"`
	PNN        int     `yaml:"p_nn"`
	FanValue   int     `yaml:"fan_value"`
}

// DatabaseConfig selects and parameterizes the catalog's backing store.
type DatabaseConfig struct {
	// Type is "file" (default), "postgres", or "mysql".
	Type string `yaml:"type"`
	// Path is the base path for the file store.
	Path string `yaml:"path"`
	// DSN is the connection string for the postgres/mysql stores.
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the top-level application configuration.
type Config struct {
	DSP      DSPConfig      `yaml:"dsp"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the reference tuning parameters and a local
// file-backed catalog at "./catalog.db".
func Default() *Config {
	return &Config{
		DSP: DSPConfig{
			SampleRate: 44100,
			NFFT:       4096,
			Overlap:    2048,
			FracCut:    0.77,
			PNN:        20,
			FanValue:   15,
		},
		Database: DatabaseConfig{
			Type: "file",
			Path: "./catalog.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path and merges it onto Default(). A missing file is
// not an error: it yields Default() unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
