package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetbook/internal/models"
	"budgetbook/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrSummaryRecompute = errors.New("failed to recompute monthly summary")
	ErrInvalidYear      = errors.New("year out of range")
	ErrMissingUser      = errors.New("user id is required")
)

const (
	MinSummaryYear = 1900
	MaxSummaryYear = 9999
)

// SummaryService recomputes monthly_summary rows from the ledger. A recompute
// is always a full aggregate followed by an upsert, both inside one SQL
// transaction, and recomputes of the same (user, month) never overlap.
type SummaryService struct {
	summaryRepo     repositories.MonthlySummaryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
	locks           *keyedMutex
}

func NewSummaryService(
	summaryRepo repositories.MonthlySummaryRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) SummaryServiceInterface {
	return &SummaryService{
		summaryRepo:     summaryRepo,
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
		locks:           newKeyedMutex(),
	}
}

func (s *SummaryService) Recompute(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	unlock := s.locks.Lock(summaryKey(userID, ym))
	defer unlock()

	start := time.Now()
	var stored *models.MonthlySummary
	err := s.summaryRepo.WithinTransaction(ctx, func(repo repositories.MonthlySummaryRepositoryInterface) error {
		summary, err := repo.Aggregate(ctx, userID, ym)
		if err != nil {
			return err
		}
		if err := repo.Upsert(ctx, summary); err != nil {
			return err
		}
		// the upsert keeps the existing row id on conflict, read it back
		stored, err = repo.GetByKey(ctx, userID, ym)
		return err
	})
	s.metrics.RecordProcessingTime(MetricSummaryRecompute, time.Since(start))

	if err != nil {
		s.metrics.IncrementCounter(MetricSummaryRecompute, map[string]string{"status": "failed"})
		s.logger.ErrorContext(ctx, "monthly summary recompute failed",
			"error", err,
			"user_id", userID,
			"year_month", ym.String())
		return nil, fmt.Errorf("%w: %w", ErrSummaryRecompute, err)
	}

	s.metrics.IncrementCounter(MetricSummaryRecompute, map[string]string{"status": "success"})
	s.logger.DebugContext(ctx, "monthly summary recomputed",
		"user_id", userID,
		"year_month", ym.String(),
		"transaction_count", stored.TransactionCount)
	return stored, nil
}

// Get returns the stored summary, computing it first when the month was never stored.
func (s *SummaryService) Get(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error) {
	summary, err := s.summaryRepo.GetByKey(ctx, userID, ym)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, repositories.ErrSummaryNotFound) {
		return nil, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	return s.Recompute(ctx, userID, ym)
}

// ListYear returns January through December. Months without a stored row are zero.
func (s *SummaryService) ListYear(ctx context.Context, userID uuid.UUID, year int) ([]models.MonthlySummary, error) {
	if year < MinSummaryYear || year > MaxSummaryYear {
		return nil, ErrInvalidYear
	}

	stored, err := s.summaryRepo.ListByYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]models.MonthlySummary, len(stored))
	for _, summary := range stored {
		byMonth[summary.YearMonth] = summary
	}

	months := models.MonthsOfYear(year)
	result := make([]models.MonthlySummary, 0, len(months))
	for _, ym := range months {
		if summary, ok := byMonth[ym.String()]; ok {
			result = append(result, summary)
			continue
		}
		result = append(result, *models.EmptyMonthlySummary(userID, ym))
	}
	return result, nil
}

func (s *SummaryService) CategoryBreakdown(ctx context.Context, userID uuid.UUID, ym models.YearMonth, txType string) ([]models.CategorySummary, error) {
	if txType != "" && !models.IsValidTransactionType(txType) {
		return nil, models.ErrInvalidTransactionType
	}

	breakdown, err := s.summaryRepo.CategoryBreakdown(ctx, userID, ym, txType)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		breakdown = []models.CategorySummary{}
	}
	return breakdown, nil
}

// RebuildAll recomputes every month in which the user has transactions.
func (s *SummaryService) RebuildAll(ctx context.Context, userID uuid.UUID) ([]models.YearMonth, error) {
	months, err := s.transactionRepo.DistinctMonths(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, ym := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.Recompute(ctx, userID, ym); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "monthly summaries rebuilt",
		"user_id", userID,
		"months", len(months))
	return months, nil
}

func summaryKey(userID uuid.UUID, ym models.YearMonth) string {
	return userID.String() + "/" + ym.String()
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
