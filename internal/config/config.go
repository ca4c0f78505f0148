// Package config loads the YAML test configuration that selects which
// perturbations to run and with what parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/lingtest/internal/sample"
)

// TestSpec configures one perturbation under the tests section. Every key
// other than prob and count is passed through to the operator factory as a
// parameter.
type TestSpec struct {
	// Prob is the per-site perturbation probability. Nil means the
	// operator default of 1.0.
	Prob *float64 `yaml:"prob"`

	// Count is the number of perturbed copies to produce per sample,
	// for operators that support it. Zero means the operator default.
	Count int `yaml:"count"`

	// Params collects the remaining operator-specific keys.
	Params map[string]any `yaml:",inline"`
}

// HistoryConfig controls the run-history store.
type HistoryConfig struct {
	// Enabled turns run recording on.
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite history database.
	DBPath string `yaml:"db_path"`
}

// Config holds every setting the CLI reads from a config file.
type Config struct {
	// Task is the evaluation task the dataset belongs to.
	Task string `yaml:"task"`

	// Seed makes perturbation selection reproducible. Zero means seed
	// from the clock.
	Seed int64 `yaml:"seed"`

	// MaxConcurrency bounds parallel model calls during run (0 = unlimited).
	MaxConcurrency int `yaml:"max_concurrency"`

	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogDir is where run logs are written. Empty disables file logging.
	LogDir string `yaml:"log_dir"`

	// History controls the run-history store.
	History HistoryConfig `yaml:"history"`

	// Tests maps perturbation alias to its configuration.
	Tests map[string]TestSpec `yaml:"tests"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Task:           string(sample.TaskClassification),
		MaxConcurrency: 0,
		LogLevel:       "info",
		LogDir:         "",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  ".lingtest/history.db",
		},
		Tests: map[string]TestSpec{},
	}
}

// LoadConfig loads configuration from path. A missing file returns the
// defaults without error; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	type yamlConfig struct {
		Task           string              `yaml:"task"`
		Seed           int64               `yaml:"seed"`
		MaxConcurrency int                 `yaml:"max_concurrency"`
		LogLevel       string              `yaml:"log_level"`
		LogDir         string              `yaml:"log_dir"`
		History        *HistoryConfig      `yaml:"history"`
		Tests          map[string]TestSpec `yaml:"tests"`
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if raw.Task != "" {
		cfg.Task = raw.Task
	}
	if raw.Seed != 0 {
		cfg.Seed = raw.Seed
	}
	if raw.MaxConcurrency != 0 {
		cfg.MaxConcurrency = raw.MaxConcurrency
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogDir != "" {
		cfg.LogDir = raw.LogDir
	}
	if raw.History != nil {
		cfg.History = *raw.History
	}
	if raw.Tests != nil {
		cfg.Tests = raw.Tests
	}

	return cfg, nil
}

// LoadConfigFromDir loads .lingtest/config.yaml from the given directory,
// falling back to defaults when it does not exist.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".lingtest", "config.yaml"))
}

// Validate checks the configuration values, naming the offending field in
// each error.
func (c *Config) Validate() error {
	if !sample.Task(c.Task).Valid() {
		return fmt.Errorf("invalid task %q", c.Task)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	for alias, spec := range c.Tests {
		if spec.Prob != nil && (*spec.Prob < 0 || *spec.Prob > 1) {
			return fmt.Errorf("tests.%s.prob must be in [0, 1], got %v", alias, *spec.Prob)
		}
		if spec.Count < 0 {
			return fmt.Errorf("tests.%s.count must be >= 0, got %d", alias, spec.Count)
		}
	}

	return nil
}

// ProbOr returns the spec's probability, or fallback when unset.
func (t TestSpec) ProbOr(fallback float64) float64 {
	if t.Prob == nil {
		return fallback
	}
	return *t.Prob
}

// OperatorParams flattens the spec into the parameter blob operator
// factories consume: the inline keys plus count when set.
func (t TestSpec) OperatorParams() map[string]any {
	params := make(map[string]any, len(t.Params)+1)
	for k, v := range t.Params {
		params[k] = v
	}
	if t.Count > 0 {
		params["count"] = t.Count
	}
	return params
}
