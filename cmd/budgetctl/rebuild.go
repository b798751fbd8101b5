package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"budgetbook/internal/database"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories"
	"budgetbook/internal/services"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"
)

func rebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute monthly summaries from the transaction ledger",
		Long: `Recompute the derived monthly_summary rows for one user or for every user.
Without --month every month holding at least one transaction is rebuilt.`,
		Args: cobra.NoArgs,
		RunE: runRebuild,
	}

	cmd.Flags().String("user", "", "user id to rebuild")
	cmd.Flags().Bool("all", false, "rebuild every user")
	cmd.Flags().String("month", "", "only rebuild this month (YYYY-MM)")
	cmd.Flags().Int("parallel", 4, "users rebuilt concurrently")
	cmd.MarkFlagsMutuallyExclusive("user", "all")
	cmd.MarkFlagsOneRequired("user", "all")

	return cmd
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	opts, err := rebuildOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	db, err := database.New(&appConfig.Database, logger.Warn)
	if err != nil {
		return err
	}
	defer db.Close()

	log := slog.Default()
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	summaries := services.NewSummaryService(
		repositories.NewMonthlySummaryRepository(db.DB),
		transactionRepo,
		services.NewPrometheusMetrics(prometheus.NewRegistry()),
		log,
	)

	if opts.all {
		opts.userIDs, err = repositories.NewUserRepository(db.DB).ListIDs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
	}

	report, err := rebuildSummaries(cmd.Context(), summaries, opts, log)
	report.print(cmd.OutOrStdout())
	return err
}

type rebuildOptions struct {
	userIDs  []uuid.UUID
	all      bool
	month    *models.YearMonth
	parallel int
}

func rebuildOptionsFromFlags(cmd *cobra.Command) (rebuildOptions, error) {
	var opts rebuildOptions

	opts.all, _ = cmd.Flags().GetBool("all")
	if rawUser, _ := cmd.Flags().GetString("user"); rawUser != "" {
		id, err := uuid.Parse(rawUser)
		if err != nil || id == uuid.Nil {
			return opts, fmt.Errorf("invalid --user %q", rawUser)
		}
		opts.userIDs = []uuid.UUID{id}
	}

	if rawMonth, _ := cmd.Flags().GetString("month"); rawMonth != "" {
		ym, err := models.ParseYearMonth(rawMonth)
		if err != nil {
			return opts, fmt.Errorf("invalid --month: %w", err)
		}
		opts.month = &ym
	}

	opts.parallel, _ = cmd.Flags().GetInt("parallel")
	if opts.parallel < 1 {
		opts.parallel = 1
	}
	return opts, nil
}

type rebuildReport struct {
	mu     sync.Mutex
	users  int
	months int
	failed []error
}

func (r *rebuildReport) add(months int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users++
	r.months += months
}

func (r *rebuildReport) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func (r *rebuildReport) print(w io.Writer) {
	fmt.Fprintf(w, "rebuilt %d months for %d users", r.months, r.users)
	if len(r.failed) > 0 {
		fmt.Fprintf(w, ", %d users failed", len(r.failed))
	}
	fmt.Fprintln(w)
}

// rebuildSummaries continues past a failed user and joins every failure into
// the returned error.
func rebuildSummaries(ctx context.Context, summaries services.SummaryServiceInterface, opts rebuildOptions, log *slog.Logger) (*rebuildReport, error) {
	report := &rebuildReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallel)

	for _, userID := range opts.userIDs {
		userID := userID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			months, err := rebuildUser(gctx, summaries, userID, opts.month)
			if err != nil {
				log.ErrorContext(gctx, "summary rebuild failed", "user_id", userID, "error", err)
				report.fail(fmt.Errorf("user %s: %w", userID, err))
				return nil
			}
			report.add(months)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, errors.Join(report.failed...)
}

func rebuildUser(ctx context.Context, summaries services.SummaryServiceInterface, userID uuid.UUID, month *models.YearMonth) (int, error) {
	if month != nil {
		if _, err := summaries.Recompute(ctx, userID, *month); err != nil {
			return 0, err
		}
		return 1, nil
	}

	months, err := summaries.RebuildAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(months), nil
}
