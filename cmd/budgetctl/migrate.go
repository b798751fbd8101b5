package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"budgetbook/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationRunner(cmd, func(mr *database.MigrationRunner) error {
				if err := mr.Up(); err != nil {
					return err
				}
				return printStatus(cmd, mr)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return withMigrationRunner(cmd, func(mr *database.MigrationRunner) error {
				if err := mr.Down(steps); err != nil {
					return err
				}
				return printStatus(cmd, mr)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationRunner(cmd, func(mr *database.MigrationRunner) error {
				return printStatus(cmd, mr)
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the SQL seed files into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationRunner(cmd, func(mr *database.MigrationRunner) error {
				return mr.LoadSeeds(cmd.Context())
			})
		},
	}
}

func withMigrationRunner(cmd *cobra.Command, fn func(mr *database.MigrationRunner) error) error {
	sqlDB, err := database.OpenSQL(&appConfig.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	mr := database.NewMigrationRunner(sqlDB, appConfig.Database.SeedsPath, slog.Default())
	if err := mr.WaitForDatabase(cmd.Context()); err != nil {
		return err
	}
	return fn(mr)
}

func printStatus(cmd *cobra.Command, mr *database.MigrationRunner) error {
	status, err := mr.Status()
	if err != nil {
		return err
	}
	dirty := ""
	if status.Dirty {
		dirty = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", status.Version, dirty)
	return nil
}
