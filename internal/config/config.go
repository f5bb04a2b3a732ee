// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles the validate.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// FileName is the default configuration file name.
const FileName = "validate.yaml"

// Environment variables consulted for the run paths.
const (
	EnvSchema = "VALIDATE_SCHEMA"
	EnvInput  = "VALIDATE_INPUT"
	EnvReport = "VALIDATE_REPORT"
)

// Config represents the validate.yaml configuration file.
type Config struct {
	Version int    `yaml:"version"`
	Schema  string `yaml:"schema,omitempty"`
	Input   string `yaml:"input,omitempty"`
	Report  string `yaml:"report,omitempty"`

	Summary string `yaml:"summary,omitempty"`
	Metrics string `yaml:"metrics,omitempty"`

	Workers    int      `yaml:"workers,omitempty"`
	NonJSON    string   `yaml:"nonJson,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
	Engine     string   `yaml:"engine,omitempty"`
}

// Default returns an empty configuration at the current version.
func Default() *Config {
	return &Config{Version: CurrentConfigVersion}
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	switch c.NonJSON {
	case "", "validate", "skip":
	default:
		return fmt.Errorf("nonJson must be \"validate\" or \"skip\", got %q", c.NonJSON)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// ResolvePaths makes relative file paths relative to dir, the directory of
// the configuration file.
func (c *Config) ResolvePaths(dir string) {
	for _, p := range []*string{&c.Schema, &c.Input, &c.Report, &c.Summary, &c.Metrics} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// ApplyEnv overrides the run paths with non-empty environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	for env, p := range map[string]*string{EnvSchema: &c.Schema, EnvInput: &c.Input, EnvReport: &c.Report} {
		if v := getenv(env); v != "" {
			*p = v
		}
	}
}
