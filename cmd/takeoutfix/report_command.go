package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/journal"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show past runs, or every journaled action for one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return reportActions(cmd, store, args[0])
			}
			return reportRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func reportRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Root,
			yesNo(run.DryRun),
			run.Status,
			run.StartedAt.Local().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Target", "Dry Run", "Status", "Started"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func reportActions(cmd *cobra.Command, store *journal.Store, runID string) error {
	actions, err := store.ListActions(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list actions for run %s: %w", runID, err)
	}

	out := cmd.OutOrStdout()
	if len(actions) == 0 {
		fmt.Fprintf(out, "No actions recorded for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{
			strconv.FormatInt(action.ID, 10),
			action.Phase,
			action.Level,
			action.Result,
			action.Source,
			action.Dest,
			yesNo(action.Applied),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Phase", "Level", "Result", "Source", "Destination", "Applied"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}
