package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "text-classification", cfg.Task)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.History.Enabled)
	assert.Empty(t, cfg.Tests)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
task: ner
seed: 42
log_level: debug
tests:
  uppercase:
    prob: 0.5
  add_typo: {}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ner", cfg.Task)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep their defaults.
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ".lingtest/history.db", cfg.History.DBPath)

	require.Len(t, cfg.Tests, 2)
	require.NotNil(t, cfg.Tests["uppercase"].Prob)
	assert.Equal(t, 0.5, *cfg.Tests["uppercase"].Prob)
	assert.Nil(t, cfg.Tests["add_typo"].Prob)
}

func TestLoadConfigInlineOperatorParams(t *testing.T) {
	path := writeConfig(t, `
task: ner
tests:
  add_punctuation:
    prob: 1.0
    count: 2
    whitelist: ["!", "?"]
  swap_entities:
    terminology:
      PER: ["Alice"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	punct := cfg.Tests["add_punctuation"]
	assert.Equal(t, 2, punct.Count)
	assert.Contains(t, punct.Params, "whitelist")

	params := punct.OperatorParams()
	assert.Equal(t, 2, params["count"])
	assert.Contains(t, params, "whitelist")
	assert.NotContains(t, params, "prob")

	assert.Contains(t, cfg.Tests["swap_entities"].Params, "terminology")
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "tests: [not, a, map")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lingtest"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".lingtest", "config.yaml"),
		[]byte("task: summarization\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "summarization", cfg.Task)
}

func TestValidate(t *testing.T) {
	bad := func(mutate func(*Config)) error {
		cfg := DefaultConfig()
		mutate(cfg)
		return cfg.Validate()
	}

	assert.NoError(t, bad(func(c *Config) {}))

	err := bad(func(c *Config) { c.Task = "parsing" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task")

	err = bad(func(c *Config) { c.MaxConcurrency = -1 })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrency")

	err = bad(func(c *Config) { c.LogLevel = "loud" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	err = bad(func(c *Config) { c.History.DBPath = "" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.db_path")

	p := 1.5
	err = bad(func(c *Config) { c.Tests = map[string]TestSpec{"uppercase": {Prob: &p}} })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tests.uppercase.prob")

	err = bad(func(c *Config) { c.Tests = map[string]TestSpec{"add_typo": {Count: -2}} })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tests.add_typo.count")
}

func TestProbOr(t *testing.T) {
	var spec TestSpec
	assert.Equal(t, 1.0, spec.ProbOr(1.0))

	p := 0.3
	spec.Prob = &p
	assert.Equal(t, 0.3, spec.ProbOr(1.0))
}
