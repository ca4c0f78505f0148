package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/dataset"
	"github.com/harrison/lingtest/internal/history"
	"github.com/harrison/lingtest/internal/sample"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate perturbed test cases from a dataset",
		Long: `Generate perturbed test cases by applying every perturbation in the
config's tests section to each sample of the input dataset.

The input format is chosen by extension: .csv (text classification, NER),
.jsonl (question answering, summarization, translation), .conll (NER).
The output format is likewise chosen by the --output extension; .jsonl
preserves span transformations and is the format the run command reads.

Examples:
  lingtest generate --data reviews.csv --output cases.jsonl
  lingtest generate --data conll03.conll --task ner --output cases.conll
  lingtest generate --data qa.jsonl --config robustness.yaml --output cases.jsonl
  lingtest generate --data reviews.csv --seed 42 --output cases.jsonl`,
		RunE: generateCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .lingtest/config.yaml)")
	cmd.Flags().String("data", "", "Input dataset path (.csv, .jsonl, or .conll)")
	cmd.Flags().String("output", "", "Output path for generated test cases")
	cmd.Flags().String("task", "", "Task type (overrides config): ner, text-classification, question-answering, summarization, translation")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible generation (overrides config)")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("output")

	return cmd
}

// generateCommand implements the generate command logic
func generateCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if task, _ := cmd.Flags().GetString("task"); task != "" {
		cfg.Task = task
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := buildLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	tests, err := buildOperators(cfg)
	if err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	loaded, err := dataset.Load(dataPath, sample.Task(cfg.Task), log)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(loaded) == 0 {
		return fmt.Errorf("dataset %s contains no usable samples", dataPath)
	}
	log.Infof("loaded %d sample(s) from %s", len(loaded), dataPath)

	generated, failures := generateTestCases(cfg, tests, loaded, log)
	if len(generated) == 0 {
		return fmt.Errorf("no test cases generated (%d test failure(s))", failures)
	}

	outPath, _ := cmd.Flags().GetString("output")
	if err := exportSamples(generated, outPath); err != nil {
		return fmt.Errorf("export test cases: %w", err)
	}

	duration := time.Since(start)
	log.Infof("wrote %d test case(s) to %s in %s", len(generated), outPath, duration.Round(time.Millisecond))

	recordHistory(cmd.Context(), cfg, log, &history.Run{
		Command:   "generate",
		Task:      cfg.Task,
		Dataset:   dataPath,
		TestTypes: testAliases(tests),
		Samples:   len(loaded),
		Generated: len(generated),
		Failures:  failures,
		Duration:  duration,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d test case(s) from %d sample(s) (%d failure(s))\n",
		len(generated), len(loaded), failures)
	return nil
}
