package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file. Pointer fields distinguish "not
// set" from an explicit zero, so a file can set delay: 0 without it being
// mistaken for an omitted key.
type fileConfig struct {
	URL       string            `yaml:"url"`
	Output    string            `yaml:"output"`
	Delay     *Duration         `yaml:"delay"`
	Timeout   *Duration         `yaml:"timeout"`
	Retries   *int              `yaml:"retries"`
	Workers   *int              `yaml:"workers"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
}

// LoadFile reads a YAML config file and returns the defaults overlaid with
// every value the file sets. A missing file yields ErrConfigNotFound so the
// caller can decide whether that is fatal.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrConfigNotFound
		}

		return cfg, err
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.URL != "" {
		cfg.URL = file.URL
	}

	if file.Output != "" {
		cfg.Output = file.Output
	}

	if file.Delay != nil {
		cfg.Delay = file.Delay.Duration
	}

	if file.Timeout != nil {
		cfg.Timeout = file.Timeout.Duration
	}

	if file.Retries != nil {
		cfg.Retries = *file.Retries
	}

	if file.Workers != nil {
		cfg.Workers = *file.Workers
	}

	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}

	if len(file.Headers) > 0 {
		cfg.Headers = file.Headers
	}

	return cfg, nil
}
