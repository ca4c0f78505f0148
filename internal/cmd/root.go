// Package cmd wires the CLI subcommands: generating perturbed test cases,
// running them against a model, and inspecting configuration and history.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for lingtest
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lingtest",
		Short: "Robustness test generation for NLP models",
		Long: `Lingtest generates perturbed variants of NLP evaluation datasets
(case changes, typos, entity swaps, contraction and homophone substitution,
and more) while tracking character-accurate span transformations, then runs
them against a model command.

Configuration is loaded from .lingtest/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewTestsCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
