package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/perturb"
)

// NewTestsCommand creates the tests command
func NewTestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tests",
		Short: "List the available perturbations",
		Long: `List every perturbation alias the generate and run commands accept
in the config's tests section.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Available perturbations:")
			for _, alias := range perturb.Aliases() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", alias)
			}
			return nil
		},
	}
}
