package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSummaryNotFound = errors.New("monthly summary not found")
)

// gorm rebinds ? to the dialect placeholder, so squirrel emits ? for every driver.
var sqlb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var summaryAggregateColumns = []string{
	"income_total",
	"expense_total",
	"savings_total",
	"transaction_count",
	"updated_at",
}

type monthlySummaryRepository struct {
	db *gorm.DB
}

func NewMonthlySummaryRepository(db *gorm.DB) MonthlySummaryRepositoryInterface {
	return &monthlySummaryRepository{db: db}
}

type aggregateRow struct {
	IncomeTotal      decimal.Decimal
	ExpenseTotal     decimal.Decimal
	SavingsTotal     decimal.Decimal
	TransactionCount int64
}

func sumByType(column, txType string) sq.Sqlizer {
	return sq.Expr(fmt.Sprintf("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS %s", column), txType)
}

// monthScope limits a transactions query to one owner and the first through last day of ym.
func monthScope(b sq.SelectBuilder, userID uuid.UUID, ym models.YearMonth) sq.SelectBuilder {
	return b.From("transactions").
		Where(sq.Expr("user_id = ?", userID.String())).
		Where(sq.Expr("date >= ?", ym.FirstDay())).
		Where(sq.Expr("date <= ?", ym.End()))
}

// Aggregate computes the month totals straight from the ledger. Nothing is stored.
func (r *monthlySummaryRepository) Aggregate(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error) {
	query, args, err := monthScope(sqlb.Select().
		Column(sumByType("income_total", models.TransactionTypeIncome)).
		Column(sumByType("expense_total", models.TransactionTypeExpense)).
		Column(sumByType("savings_total", models.TransactionTypeSavings)).
		Column("COUNT(*) AS transaction_count"), userID, ym).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregate query: %w", err)
	}

	var row aggregateRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	summary := models.EmptyMonthlySummary(userID, ym)
	summary.IncomeTotal = row.IncomeTotal
	summary.ExpenseTotal = row.ExpenseTotal
	summary.SavingsTotal = row.SavingsTotal
	summary.TransactionCount = row.TransactionCount
	return summary, nil
}

// Upsert inserts the row for (year_month, user_id) or overwrites its aggregate fields.
func (r *monthlySummaryRepository) Upsert(ctx context.Context, summary *models.MonthlySummary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}

	summary.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year_month"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(summaryAggregateColumns),
		}).
		Create(summary).Error
	if err != nil {
		return fmt.Errorf("failed to upsert monthly summary: %w", err)
	}
	return nil
}

func (r *monthlySummaryRepository) GetByKey(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error) {
	var summary models.MonthlySummary
	err := r.db.WithContext(ctx).
		Where("year_month = ? AND user_id = ?", ym.String(), userID).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	return &summary, nil
}

// ListByYear returns the stored rows of a year in month order. Months never computed are absent.
func (r *monthlySummaryRepository) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]models.MonthlySummary, error) {
	first := models.YearMonth{Year: year, Month: time.January}
	last := models.YearMonth{Year: year, Month: time.December}

	var summaries []models.MonthlySummary
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year_month >= ? AND year_month <= ?", userID, first.String(), last.String()).
		Order("year_month ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly summaries: %w", err)
	}
	return summaries, nil
}

// CategoryBreakdown groups one month of transactions by category, largest total first.
// An empty txType covers every type.
func (r *monthlySummaryRepository) CategoryBreakdown(ctx context.Context, userID uuid.UUID, ym models.YearMonth, txType string) ([]models.CategorySummary, error) {
	builder := monthScope(sqlb.Select(
		"category",
		"COUNT(*) AS transaction_count",
		"COALESCE(SUM(amount), 0) AS total_amount",
	), userID, ym)
	if txType != "" {
		builder = builder.Where(sq.Expr("type = ?", txType))
	}

	query, args, err := builder.
		GroupBy("category").
		OrderBy("total_amount DESC", "category ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}

	var breakdown []models.CategorySummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&breakdown).Error; err != nil {
		return nil, fmt.Errorf("failed to get category breakdown: %w", err)
	}
	return breakdown, nil
}

func (r *monthlySummaryRepository) WithinTransaction(ctx context.Context, fn func(repo MonthlySummaryRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&monthlySummaryRepository{db: tx})
	})
}
