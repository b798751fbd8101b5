package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"budgetbook/internal/dto"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrTransactionDateFormat = errors.New("date must be formatted as YYYY-MM-DD")
)

// TransactionService writes the ledger. Every successful mutation is followed
// by a recompute of each month it touched; a recompute error is returned to the
// caller even though the mutation itself has been committed.
type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	summaryService  SummaryServiceInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	summaryService SummaryServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	return &TransactionService{
		transactionRepo: transactionRepo,
		summaryService:  summaryService,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, req *dto.TransactionRequest) (*models.Transaction, error) {
	transaction := &models.Transaction{UserID: userID}
	if err := applyTransactionRequest(transaction, req); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.recordMutation("create")

	if err := s.recompute(ctx, userID, transaction.YearMonth()); err != nil {
		return transaction, err
	}
	return transaction, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// Update replaces every mutable field. Moving the date into another month
// recomputes both the old and the new month.
func (s *TransactionService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.TransactionRequest) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousMonth := transaction.YearMonth()

	if err := applyTransactionRequest(transaction, req); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(ctx, transaction); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	s.recordMutation("update")

	months := []models.YearMonth{transaction.YearMonth()}
	if !previousMonth.Contains(transaction.Date) {
		months = append(months, previousMonth)
	}
	for _, ym := range months {
		if err := s.recompute(ctx, userID, ym); err != nil {
			return transaction, err
		}
	}
	return transaction, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	transaction, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.recordMutation("delete")

	return s.recompute(ctx, userID, transaction.YearMonth())
}

func (s *TransactionService) List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if filters.UserID == uuid.Nil {
		return nil, 0, ErrMissingUser
	}
	if filters.Type != "" && !models.IsValidTransactionType(filters.Type) {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidTransaction, models.ErrInvalidTransactionType)
	}
	return s.transactionRepo.List(ctx, filters)
}

func (s *TransactionService) recompute(ctx context.Context, userID uuid.UUID, ym models.YearMonth) error {
	if _, err := s.summaryService.Recompute(ctx, userID, ym); err != nil {
		return err
	}
	return nil
}

func (s *TransactionService) recordMutation(operation string) {
	s.metrics.IncrementCounter(MetricTransactionMutation, map[string]string{"operation": operation})
}

// applyTransactionRequest copies req onto t and validates the result.
func applyTransactionRequest(t *models.Transaction, req *dto.TransactionRequest) error {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, ErrTransactionDateFormat)
	}

	t.Date = date
	t.Amount = req.Amount
	t.Type = strings.ToLower(strings.TrimSpace(req.Type))
	t.Category = strings.TrimSpace(req.Category)
	t.Description = strings.TrimSpace(req.Description)
	t.Memo = trimOptional(req.Memo)
	t.PaymentMethod = trimOptional(req.PaymentMethod)

	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
