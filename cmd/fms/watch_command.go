package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/saransh1220/flow-management/internal/poller"
	"github.com/saransh1220/flow-management/internal/shared/infrastructure/config"
	"github.com/saransh1220/flow-management/internal/shared/utils"
	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var session string
	var noBell bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for new notifications and alert in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr(), false)

			token, err := watchToken(cfg, userID)
			if err != nil {
				return err
			}
			if session == "" {
				session = uuid.NewString()
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var store poller.AlertedStore = poller.NewMemoryAlertedStore(cfg.Poller.AlertedCap)
			if cfg.Poller.UseRedis {
				if rdb := ctx.openRedis(runCtx, logger); rdb != nil {
					defer rdb.Close()
					store = poller.NewRedisAlertedStore(rdb, session, cfg.Poller.AlertedCap)
				}
			}

			p := poller.New(
				poller.NewHTTPClient(cfg.Poller.BaseURL, token, nil),
				store,
				poller.NewTerminalAlerter(cmd.OutOrStdout(), !noBell),
				logger,
				poller.Options{
					InitialDelay:   cfg.Poller.InitialDelay,
					Interval:       cfg.Poller.Interval,
					RequestTimeout: cfg.Poller.RequestTimeout,
				},
			)
			logger.Info("watching notifications", "url", cfg.Poller.BaseURL, "session", session)

			if err := p.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Sign a token for this user with JWT_SECRET when POLLER_TOKEN is unset")
	cmd.Flags().StringVar(&session, "session", "", "Alerted-list session key (random when empty)")
	cmd.Flags().BoolVar(&noBell, "no-bell", false, "Do not ring the terminal bell")
	return cmd
}

// watchToken prefers the configured token and otherwise signs one for userID.
func watchToken(cfg *config.Config, userID int64) (string, error) {
	if cfg.Poller.Token != "" {
		return cfg.Poller.Token, nil
	}
	if userID <= 0 {
		return "", fmt.Errorf("set POLLER_TOKEN or pass --user-id")
	}
	return utils.GenerateToken(userID, "", "employee", cfg.JWT.Secret, cfg.JWT.Expiry)
}
