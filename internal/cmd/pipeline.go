package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/config"
	"github.com/harrison/lingtest/internal/dataset"
	"github.com/harrison/lingtest/internal/history"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/perturb"
	"github.com/harrison/lingtest/internal/sample"
)

// loadConfig resolves the --config flag, falling back to
// .lingtest/config.yaml in the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildLogger assembles the console logger, teed with a run-stamped file
// logger when the config names a log directory.
func buildLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, func(), error) {
	console := logger.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	file, err := logger.NewFile(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.Tee{console, file}, func() { file.Close() }, nil
}

// configuredTest is one operator built from the tests section, alias kept
// for reporting.
type configuredTest struct {
	alias string
	op    perturb.Operator
}

// buildOperators constructs every operator named in the tests section, in
// alias order so generation is deterministic for a fixed seed.
func buildOperators(cfg *config.Config) ([]configuredTest, error) {
	if len(cfg.Tests) == 0 {
		return nil, fmt.Errorf("no tests configured; add a tests section to the config (see `lingtest tests` for available perturbations)")
	}

	aliases := make([]string, 0, len(cfg.Tests))
	for alias := range cfg.Tests {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	tests := make([]configuredTest, 0, len(aliases))
	for _, alias := range aliases {
		spec := cfg.Tests[alias]
		op, err := perturb.Build(alias, spec.ProbOr(1.0), perturb.Params(spec.OperatorParams()))
		if err != nil {
			return nil, fmt.Errorf("tests.%s: %w", alias, err)
		}
		tests = append(tests, configuredTest{alias: alias, op: op})
	}
	return tests, nil
}

// generateTestCases applies every configured operator to a cloned copy of
// the loaded samples and returns the perturbed outputs. Failures of one
// operator do not abort the rest; they are logged and counted.
func generateTestCases(cfg *config.Config, tests []configuredTest, loaded []*sample.Sample, log logger.Logger) (generated []*sample.Sample, failures int) {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	for _, t := range tests {
		inputs := make([]perturb.Input, len(loaded))
		for i, s := range loaded {
			inputs[i] = perturb.Of(s.Clone())
		}

		outputs, err := t.op.Transform(rng, inputs)
		if err != nil {
			log.Warnf("test %s failed: %v", t.alias, err)
			failures++
			continue
		}
		count := 0
		for _, out := range outputs {
			if out.IsRaw() {
				continue
			}
			generated = append(generated, out.Sample)
			count++
		}
		log.Debugf("test %s produced %d case(s)", t.alias, count)
	}
	return generated, failures
}

// testAliases joins the configured aliases for history records.
func testAliases(tests []configuredTest) string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.alias
	}
	return strings.Join(names, ",")
}

// recordHistory appends a run record when history is enabled. Recording
// failures are warnings, never command failures.
func recordHistory(ctx context.Context, cfg *config.Config, log logger.Logger, r *history.Run) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.Warnf("open history store: %v", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, r); err != nil {
		log.Warnf("record run history: %v", err)
		return
	}
	log.Debugf("recorded run %s", r.RunID)
}

// exportSamples dispatches on the output extension: .csv, .jsonl, or
// .conll.
func exportSamples(samples []*sample.Sample, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return dataset.ExportCSV(samples, path)
	case ".jsonl":
		return dataset.ExportJSONL(samples, path)
	case ".conll":
		return dataset.ExportCoNLL(samples, path)
	default:
		return fmt.Errorf("unsupported output format %q (want .csv, .jsonl, or .conll)", ext)
	}
}
