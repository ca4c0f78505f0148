package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/dataset"
	"github.com/harrison/lingtest/internal/history"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/runner"
	"github.com/harrison/lingtest/internal/sample"
)

// commandModel adapts an external executable to the runner.Model interface:
// the text goes in on stdin, the prediction comes back on stdout. Output is
// shaped by task: BIO tags for NER, a label for classification, free text
// otherwise.
type commandModel struct {
	name string
	args []string
	task sample.Task
}

// newCommandModel splits a shell-style command line into executable and
// arguments.
func newCommandModel(cmdline string, task sample.Task) (*commandModel, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("model command is empty")
	}
	return &commandModel{name: fields[0], args: fields[1:], task: task}, nil
}

// Predict runs the model command once for the given text.
func (m *commandModel) Predict(ctx context.Context, text string) (sample.Result, error) {
	cmd := exec.CommandContext(ctx, m.name, m.args...)
	cmd.Stdin = strings.NewReader(text)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("model command failed: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("model command failed: %w", err)
	}

	raw := strings.TrimSpace(string(out))
	switch m.task {
	case sample.TaskNER:
		return sample.NEROutputFromBIO(text, strings.Fields(raw)), nil
	case sample.TaskClassification:
		return sample.ClassificationOutput{Label: raw, Score: 1.0}, nil
	default:
		return sample.TextOutput{Text: raw}, nil
	}
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate test cases and run them against a model command",
		Long: `Generate perturbed test cases from a dataset and execute each one
against a model command. The command receives the input text on stdin and
must print its prediction to stdout: space-separated BIO tags for NER, a
class label for text classification, free text otherwise.

Each sample gets two model calls, one for the original text and one for
the perturbed test case, and the results are stored side by side in the
output file (.jsonl preserves everything, including span transformations).

Examples:
  lingtest run --data reviews.csv --model-cmd "python predict.py" --output results.jsonl
  lingtest run --data conll03.conll --task ner --model-cmd ./tagger --output results.jsonl
  lingtest run --data qa.jsonl --model-cmd "curl -s http://localhost:8080/predict -d @-" --max-concurrency 4 --output results.jsonl`,
		RunE: runCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .lingtest/config.yaml)")
	cmd.Flags().String("data", "", "Input dataset path (.csv, .jsonl, or .conll)")
	cmd.Flags().String("output", "", "Output path for executed test cases")
	cmd.Flags().String("model-cmd", "", "Model command: reads text on stdin, prints prediction on stdout")
	cmd.Flags().String("task", "", "Task type (overrides config)")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible generation (overrides config)")
	cmd.Flags().Int("max-concurrency", -1, "Maximum concurrent model calls (0 = unlimited, -1 = use config)")
	cmd.Flags().Int("batch-size", 10, "Samples per execution batch")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("output")
	cmd.MarkFlagRequired("model-cmd")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
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
	if mc, _ := cmd.Flags().GetInt("max-concurrency"); cmd.Flags().Changed("max-concurrency") && mc >= 0 {
		cfg.MaxConcurrency = mc
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

	modelCmd, _ := cmd.Flags().GetString("model-cmd")
	model, err := newCommandModel(modelCmd, sample.Task(cfg.Task))
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

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	batches := batchSamples(generated, batchSize)

	bar := logger.NewProgress(len(generated), 40, false)
	r := runner.New(runner.WithProgress(func(s *sample.Sample) {
		bar.Increment()
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", bar.Render())
	}))

	log.Infof("executing %d test case(s) in %d batch(es)", len(generated), len(batches))
	if err := r.RunBatches(cmd.Context(), batches, model, cfg.MaxConcurrency); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
		return fmt.Errorf("run test cases: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	outPath, _ := cmd.Flags().GetString("output")
	if err := exportSamples(generated, outPath); err != nil {
		return fmt.Errorf("export results: %w", err)
	}

	duration := time.Since(start)
	log.Infof("executed %d test case(s) in %s", len(generated), duration.Round(time.Millisecond))

	recordHistory(cmd.Context(), cfg, log, &history.Run{
		Command:   "run",
		Task:      cfg.Task,
		Dataset:   dataPath,
		TestTypes: testAliases(tests),
		Samples:   len(loaded),
		Generated: len(generated),
		Failures:  failures,
		Duration:  duration,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Executed %d test case(s) from %d sample(s), results in %s\n",
		len(generated), len(loaded), outPath)
	return nil
}

// batchSamples splits samples into batches of at most size each.
func batchSamples(samples []*sample.Sample, size int) [][]*sample.Sample {
	if size < 1 {
		size = 1
	}
	var batches [][]*sample.Sample
	for start := 0; start < len(samples); start += size {
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		batches = append(batches, samples[start:end])
	}
	return batches
}
