package main

import (
	"fmt"

	"github.com/alexivanou/findfun-api/internal/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newMigrateCmd creates the migrate command group
func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			e.logger.Info("Running migrations UP", zap.String("db_type", string(e.cfg.DB.Type)))
			if err := migrations.Up(e.db, e.cfg.DB.Type); err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert every applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			e.logger.Info("Running migrations DOWN", zap.String("db_type", string(e.cfg.DB.Type)))
			if err := migrations.Down(e.db, e.cfg.DB.Type); err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations reverted")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			v, dirty, err := migrations.Version(e.db, e.cfg.DB.Type)
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			if opts.format == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"version": v, "dirty": dirty})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %d (dirty: %t)\n", v, dirty)
			return nil
		},
	})

	return cmd
}
