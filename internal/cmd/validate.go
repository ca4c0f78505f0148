package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/dataset"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/sample"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file and optionally a dataset",
		Long: `Parse and validate a test configuration, checking for:
  - Known task type
  - Perturbation aliases that exist in the registry
  - Operator parameters the factories accept
  - Well-formed probability and count values

With --data, also loads the dataset and reports how many samples are
usable.

Exit code: 0 if valid, 1 if errors found`,
		RunE: validateCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .lingtest/config.yaml)")
	cmd.Flags().String("data", "", "Dataset path to validate against the configured task")
	cmd.Flags().String("task", "", "Task type (overrides config)")

	return cmd
}

// validateCommand implements the validate command logic
func validateCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if task, _ := cmd.Flags().GetString("task"); task != "" {
		cfg.Task = task
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fmt.Fprintf(out, "Configuration valid: task %s, %d test(s)\n", cfg.Task, len(cfg.Tests))

	// Building the operators exercises every factory's parameter checks.
	if len(cfg.Tests) > 0 {
		tests, err := buildOperators(cfg)
		if err != nil {
			return err
		}
		for _, t := range tests {
			fmt.Fprintf(out, "  %s: ok\n", t.alias)
		}
	}

	dataPath, _ := cmd.Flags().GetString("data")
	if dataPath == "" {
		return nil
	}

	log := logger.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel)
	loaded, err := dataset.Load(dataPath, sample.Task(cfg.Task), log)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(loaded) == 0 {
		return fmt.Errorf("dataset %s contains no usable samples", dataPath)
	}
	fmt.Fprintf(out, "Dataset valid: %d usable sample(s) in %s\n", len(loaded), dataPath)
	return nil
}
