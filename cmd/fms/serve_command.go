package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/saransh1220/flow-management/internal/gateway"
	"github.com/saransh1220/flow-management/internal/gateway/middleware"
	"github.com/saransh1220/flow-management/internal/modules/notification"
	"github.com/saransh1220/flow-management/internal/modules/trigger"
	"github.com/saransh1220/flow-management/internal/modules/workflow"
	"github.com/saransh1220/flow-management/pkg/migration"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the delivery API and websocket push",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr(), true)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.App.AutoMigrate {
				if err := migration.AutoMigrate(cfg.Database.MigrationDSN(), logger); err != nil {
					return err
				}
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("database connected", "host", cfg.Database.Host, "db", cfg.Database.DBName)

			rdb := ctx.openRedis(runCtx, logger)
			if rdb != nil {
				defer rdb.Close()
			}

			loc := cfg.App.Location()
			notifications := notification.NewModule(db, rdb, loc, logger)
			defer notifications.Shutdown()
			if err := notifications.StartRelay(runCtx); err != nil {
				return err
			}
			workflows := workflow.NewModule(db, notifications.Service(), loc, logger)

			handler := gateway.NewHandler(gateway.RouterConfig{
				AuthMiddleware:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
				NotificationHandler: notifications.HTTPHandler(),
				WorkflowHandler:     workflows.HTTPHandler(),
				AllowedOrigins:      cfg.Server.AllowedOrigins,
				Logger:              logger,
			})

			var wait func()
			if cfg.Triggers.Enabled {
				triggers := trigger.NewModule(db, notifications.Service(), triggerSettings(cfg.Triggers), loc, logger)
				scheduler := triggers.Scheduler()
				scheduler.Start(runCtx)
				wait = scheduler.Wait
			}

			err = gateway.NewServer(cfg.Server.Port, handler, logger).Start(runCtx)
			stop()
			if wait != nil {
				wait()
			}
			return err
		},
	}
}
