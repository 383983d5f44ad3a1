package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"takeoutfix/internal/deps"
	"takeoutfix/internal/journal"
	"takeoutfix/internal/pipeline"
	"takeoutfix/internal/services"
	"takeoutfix/internal/stage"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var skipExtensionFix bool
	var skipEmbed bool

	cmd := &cobra.Command{
		Use:   "run <directory>",
		Short: "Reconcile an export tree in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, store, err := executePipeline(cmd.Context(), ctx, args[0], pipelineFlags{
				dryRun:           dryRun,
				skipExtensionFix: skipExtensionFix,
				skipEmbed:        skipEmbed,
			})
			if store != nil {
				defer store.Close()
			}
			if err != nil {
				return err
			}
			printRunSummary(cmd, run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned changes without touching any files")
	cmd.Flags().BoolVar(&skipExtensionFix, "skip-extension-fix", false, "Skip the content extension correction phase")
	cmd.Flags().BoolVar(&skipEmbed, "skip-embed", false, "Skip the metadata embedding phase")
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var skipExtensionFix bool
	var skipEmbed bool

	cmd := &cobra.Command{
		Use:   "plan <directory>",
		Short: "Show what a run would change without touching any files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, store, err := executePipeline(cmd.Context(), ctx, args[0], pipelineFlags{
				dryRun:           true,
				skipExtensionFix: skipExtensionFix,
				skipEmbed:        skipEmbed,
			})
			if store != nil {
				defer store.Close()
			}
			if err != nil {
				return err
			}

			actions, err := store.ListActions(cmd.Context(), run.ID)
			if err != nil {
				return fmt.Errorf("list planned actions: %w", err)
			}
			printPlan(cmd, run, actions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExtensionFix, "skip-extension-fix", false, "Skip the content extension correction phase")
	cmd.Flags().BoolVar(&skipEmbed, "skip-embed", false, "Skip the metadata embedding phase")
	return cmd
}

type pipelineFlags struct {
	dryRun           bool
	skipExtensionFix bool
	skipEmbed        bool
}

func executePipeline(ctx context.Context, cctx *commandContext, target string, flags pipelineFlags) (*stage.Run, *journal.Store, error) {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	requirements := deps.Requirements(cfg)
	if flags.skipEmbed {
		requirements = deps.MarkEmbedderOptional(requirements)
	}
	statuses := deps.CheckBinaries(requirements)
	if missing := deps.MissingRequired(statuses); missing != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "cli", "preflight",
			fmt.Sprintf("Required tool %q is unavailable: %s", missing.Command, missing.Detail), nil)
	}

	logger, err := cctx.newLogger()
	if err != nil {
		return nil, nil, err
	}

	store, err := cctx.openStore()
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.New(pipeline.Options{
		Config:           cfg,
		Logger:           logger,
		Store:            store,
		Root:             target,
		DryRun:           flags.dryRun,
		SkipExtensionFix: flags.skipExtensionFix,
		SkipEmbed:        flags.skipEmbed,
	})
	if err != nil {
		return nil, store, err
	}

	run, err := p.Run(ctx)
	if err != nil {
		return nil, store, err
	}
	return run, store, nil
}

func printRunSummary(cmd *cobra.Command, run *stage.Run) {
	out := cmd.OutOrStdout()
	verb := "Renamed"
	if run.DryRun {
		verb = "Would rename"
	}
	fmt.Fprintf(out, "Run %s finished for %s\n", run.ID, run.Root)
	fmt.Fprintf(out, "%s %d file(s), %d warning(s), %d skipped\n", verb, run.Renamed, run.Warned, run.Skipped)
}

func printPlan(cmd *cobra.Command, run *stage.Run, actions []journal.Action) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		if action.Level != journal.LevelRename {
			continue
		}
		rows = append(rows, []string{action.Phase, action.Result, action.Source, action.Dest})
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "Nothing to change under %s\n", run.Root)
		return
	}

	for _, line := range planHeading(out, fmt.Sprintf("Planned changes for %s", run.Root)) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Phase", "Action", "Source", "Destination"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	if run.Warned > 0 {
		fmt.Fprintf(out, "%d file(s) need manual attention; see the run log for details.\n", run.Warned)
	}
}
