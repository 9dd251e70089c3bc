package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/peteraglen/restconsumer"
	"github.com/peteraglen/restconsumer/retry"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.API == nil && cfg.Descriptor != "" {
		descPath := cfg.Descriptor
		if !filepath.IsAbs(descPath) {
			descPath = filepath.Join(filepath.Dir(path), descPath)
		}
		if cfg.API, err = restconsumer.LoadDescriptor(descPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Parse decodes configuration from YAML, expanding ${VAR} references from
// the environment first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint must be set")
	}

	// Set defaults if necessary
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = retry.DefaultMaxAttempts
	}
	if cfg.Retry.Delay == 0 {
		cfg.Retry.Delay = retry.DefaultDelay
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.API != nil {
		if err := cfg.API.Validate(); err != nil {
			return nil, fmt.Errorf("invalid api descriptor: %w", err)
		}
	}

	return &cfg, nil
}
