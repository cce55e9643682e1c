package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/saransh1220/flow-management/internal/modules/notification"
	"github.com/saransh1220/flow-management/internal/modules/trigger"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/infrastructure/lock"
	"github.com/saransh1220/flow-management/internal/shared/infrastructure/config"
	"github.com/spf13/cobra"
)

func newCronCommand(ctx *commandContext) *cobra.Command {
	cronCmd := &cobra.Command{
		Use:   "cron",
		Short: "Run notification triggers",
	}
	cronCmd.AddCommand(newCronRunCommand(ctx))
	return cronCmd
}

func newCronRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "run [delay|notes|day-special|all]",
		Short:     "Run one trigger job once and exit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: trigger.Jobs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := trigger.JobAll
			if len(args) == 1 {
				job = args[0]
			}
			names, err := trigger.JobTriggers(job)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr(), false)

			jobLock, err := lock.Acquire(cfg.Triggers.LockDir, job)
			if errors.Is(err, lock.ErrHeld) {
				logger.Info("skipped, previous run still active", "job", job)
				return nil
			}
			if err != nil {
				return err
			}
			defer jobLock.Release()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			rdb := ctx.openRedis(runCtx, logger)
			if rdb != nil {
				defer rdb.Close()
			}

			loc := cfg.App.Location()
			notifications := notification.NewModule(db, rdb, loc, logger)
			defer notifications.Shutdown()

			triggers := trigger.NewModule(db, notifications.Service(), triggerSettings(cfg.Triggers), loc, logger)
			results := triggers.Runner().RunNames(runCtx, names...)
			return printResults(cmd.OutOrStdout(), results)
		},
	}
}

func triggerSettings(cfg config.TriggerConfig) trigger.Settings {
	return trigger.Settings{
		DelayWindow:   cfg.DelayWindow,
		NotesWindow:   cfg.NotesWindow,
		CheckInterval: cfg.CheckInterval,
		DailyInterval: cfg.DailyInterval,
	}
}

// printResults writes one line per trigger and fails when any trigger did.
func printResults(w io.Writer, results []domain.Result) error {
	failed := 0
	var total domain.Report
	for _, res := range results {
		total.Add(res.Report)
		detail := res.Report.String()
		if res.Err != nil {
			failed++
			detail = res.Err.Error()
		}
		fmt.Fprintf(w, "%-26s %-7s %s\n", res.Name, res.Outcome(), detail)
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "%-26s %-7s %s\n", "total", "", total.String())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d triggers failed", failed, len(results))
	}
	return nil
}
