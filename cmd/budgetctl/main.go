package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"budgetbook/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// appConfig is populated by the root command before any subcommand runs.
var appConfig *config.Config

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Operate the budgetbook database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Logging.Level = level
			}
			slog.SetDefault(cfg.NewLogger())
			appConfig = cfg
			return nil
		},
	}

	root.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(rebuildCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
