package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/lingtest/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past generate and run invocations",
		Long: `List recorded invocations of the generate and run commands, most
recent first. With a run ID argument, show that single run.

Examples:
  lingtest history
  lingtest history --limit 5
  lingtest history 6d1f3b2a-9c41-4f6e-8a27-0f3d9b1c52ee`,
		Args: cobra.MaximumNArgs(1),
		RunE: historyCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .lingtest/config.yaml)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	var runs []*history.Run
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		run, err := store.RunByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		runs = []*history.Run{run}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err = store.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN ID\tCOMMAND\tTASK\tTESTS\tSAMPLES\tGENERATED\tFAILURES\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.RunID,
			r.Command,
			r.Task,
			r.TestTypes,
			r.Samples,
			r.Generated,
			r.Failures,
			r.Duration.Round(time.Millisecond),
		)
	}
	return w.Flush()
}
