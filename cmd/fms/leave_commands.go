package main

import (
	"fmt"
	"io"

	"github.com/saransh1220/flow-management/internal/modules/workflow"
	"github.com/saransh1220/flow-management/internal/modules/workflow/application"
	"github.com/spf13/cobra"
)

func newLeaveCommand(ctx *commandContext) *cobra.Command {
	leaveCmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave request maintenance",
	}

	var dryRun bool
	fixCmd := &cobra.Command{
		Use:   "fix-statuses",
		Short: "Rewrite legacy leave status spellings to the canonical set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr(), false)

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			module := workflow.NewModule(db, nil, cfg.App.Location(), logger)
			report, err := module.Service().FixLeaveStatuses(cmd.Context(), dryRun)
			printFixReport(cmd.OutOrStdout(), report, dryRun)
			return err
		},
	}
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	leaveCmd.AddCommand(fixCmd)

	return leaveCmd
}

func printFixReport(w io.Writer, report application.FixReport, dryRun bool) {
	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	fmt.Fprintf(w, "scanned %d, %s %d, skipped %d, unknown %d\n",
		report.Scanned, verb, report.Fixed, report.Skipped, len(report.Unknown))
	for _, row := range report.Unknown {
		fmt.Fprintf(w, "  leave %d: unrecognised status %q\n", row.ID, row.Status)
	}
}
