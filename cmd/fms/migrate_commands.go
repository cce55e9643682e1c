package main

import (
	"fmt"
	"strconv"

	"github.com/saransh1220/flow-management/pkg/migration"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "Read migrations from this directory instead of the embedded set")

	runner := func(cmd *cobra.Command) (*migration.Runner, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		return migration.NewRunner(&migration.Config{
			MigrationsPath: pathFlag,
			DatabaseDSN:    cfg.Database.MigrationDSN(),
			Logger:         ctx.logger(cmd.ErrOrStderr(), false),
		}), nil
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := runner(cmd)
			if err != nil {
				return err
			}
			return r.Up()
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := runner(cmd)
			if err != nil {
				return err
			}
			return r.Down()
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := runner(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := r.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < -1 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			r, err := runner(cmd)
			if err != nil {
				return err
			}
			return r.Force(version)
		},
	})

	return migrateCmd
}
