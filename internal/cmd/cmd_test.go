package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/lingtest/internal/sample"
)

// execute runs the root command with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// fixture writes a dataset, a config, and returns their paths plus an
// output path, all inside one temp dir.
func fixture(t *testing.T, configYAML string) (configPath, dataPath, outPath string) {
	t.Helper()
	dir := t.TempDir()

	dataPath = filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"text,label\n"+
			"the movie was great,positive\n"+
			"utterly boring,negative\n"), 0644))

	configPath = filepath.Join(dir, "config.yaml")
	content := strings.ReplaceAll(configYAML, "{DIR}", dir)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	return configPath, dataPath, filepath.Join(dir, "cases.jsonl")
}

const basicConfig = `
task: text-classification
seed: 7
history:
  enabled: true
  db_path: "{DIR}/history.db"
tests:
  uppercase:
    prob: 1.0
`

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"generate", "run", "tests", "validate", "history"} {
		assert.Contains(t, names, want)
	}
}

func TestTestsCommandListsAliases(t *testing.T) {
	out, err := execute(t, "tests")
	require.NoError(t, err)
	assert.Contains(t, out, "uppercase")
	assert.Contains(t, out, "add_typo")
	assert.Contains(t, out, "multiple_perturbations")
}

func TestGenerateWritesTestCases(t *testing.T) {
	configPath, dataPath, outPath := fixture(t, basicConfig)

	out, err := execute(t, "generate",
		"--config", configPath,
		"--data", dataPath,
		"--output", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 2 test case(s)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "THE MOVIE WAS GREAT")
	assert.Contains(t, string(data), "UTTERLY BORING")
}

func TestGenerateRequiresTests(t *testing.T) {
	configPath, dataPath, outPath := fixture(t, "task: text-classification\n")

	_, err := execute(t, "generate",
		"--config", configPath,
		"--data", dataPath,
		"--output", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tests configured")
}

func TestGenerateRejectsUnknownOutputFormat(t *testing.T) {
	configPath, dataPath, _ := fixture(t, basicConfig)

	_, err := execute(t, "generate",
		"--config", configPath,
		"--data", dataPath,
		"--output", filepath.Join(t.TempDir(), "cases.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestHistoryListsRecordedRuns(t *testing.T) {
	configPath, dataPath, outPath := fixture(t, basicConfig)

	_, err := execute(t, "generate",
		"--config", configPath,
		"--data", dataPath,
		"--output", outPath)
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "generate")
	assert.Contains(t, out, "text-classification")
	assert.Contains(t, out, "uppercase")
}

func TestHistoryDisabled(t *testing.T) {
	configPath, _, _ := fixture(t, "history:\n  enabled: false\n")

	_, err := execute(t, "history", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestValidateReportsBadAlias(t *testing.T) {
	configPath, _, _ := fixture(t, `
task: ner
tests:
  reverse_words: {}
`)

	_, err := execute(t, "validate", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown perturbation")
}

func TestValidateAcceptsConfigAndDataset(t *testing.T) {
	configPath, dataPath, _ := fixture(t, basicConfig)

	out, err := execute(t, "validate",
		"--config", configPath,
		"--data", dataPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "uppercase: ok")
	assert.Contains(t, out, "2 usable sample(s)")
}

func TestRunExecutesModelCommand(t *testing.T) {
	configPath, dataPath, outPath := fixture(t, basicConfig)

	out, err := execute(t, "run",
		"--config", configPath,
		"--data", dataPath,
		"--model-cmd", "cat",
		"--output", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Executed 2 test case(s)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	// cat echoes its input, so the prediction label is the text itself.
	assert.Contains(t, string(data), "expected_results")
	assert.Contains(t, string(data), `"state":"done"`)
}

func TestRunRejectsEmptyModelCommand(t *testing.T) {
	configPath, dataPath, outPath := fixture(t, basicConfig)

	_, err := execute(t, "run",
		"--config", configPath,
		"--data", dataPath,
		"--model-cmd", "  ",
		"--output", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model command is empty")
}

func TestBatchSamples(t *testing.T) {
	assert.Empty(t, batchSamples(nil, 3))

	samples := make([]*sample.Sample, 7)
	for i := range samples {
		samples[i] = sample.New(sample.TaskClassification, "x")
	}

	batches := batchSamples(samples, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[2], 1)

	// A non-positive size still makes progress.
	assert.Len(t, batchSamples(samples, 0), 7)
}
