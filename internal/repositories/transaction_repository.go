package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"budgetbook/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// Update writes every mutable field. The owner and creation time never change.
func (r *transactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(transaction).
		Where("user_id = ?", transaction.UserID).
		Select("date", "amount", "type", "category", "description", "memo", "payment_method", "updated_at").
		Updates(transaction)

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// List returns one page of the user's transactions, newest date first, and the total match count.
func (r *transactionRepository) List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", filters.UserID)

	if filters.Month != nil {
		query = query.Where("date >= ? AND date <= ?", filters.Month.FirstDay(), filters.Month.End())
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(COALESCE(memo, '')) LIKE ?)",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	if err := query.Order("date DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// DistinctMonths lists the months with at least one transaction, oldest first.
func (r *transactionRepository) DistinctMonths(ctx context.Context, userID uuid.UUID) ([]models.YearMonth, error) {
	var dates []time.Time
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Distinct("date").
		Pluck("date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to list transaction months: %w", err)
	}

	seen := make(map[models.YearMonth]struct{}, len(dates))
	months := make([]models.YearMonth, 0, len(dates))
	for _, d := range dates {
		ym := models.YearMonthOf(d)
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		months = append(months, ym)
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i].FirstDay().Before(months[j].FirstDay())
	})
	return months, nil
}
