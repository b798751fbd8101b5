package repositories

import (
	"context"

	"budgetbook/internal/models"

	"github.com/google/uuid"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateFailedLoginAttempts(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, user *models.User) error
	UnlockAccount(ctx context.Context, userID uuid.UUID) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TransactionRepositoryInterface defines the contract for ledger operations.
// Lookups that take a userID only see rows owned by that user.
type TransactionRepositoryInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)
	DistinctMonths(ctx context.Context, userID uuid.UUID) ([]models.YearMonth, error)
}

// MonthlySummaryRepositoryInterface reads the ledger aggregates and stores the derived rows.
type MonthlySummaryRepositoryInterface interface {
	Aggregate(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error)
	Upsert(ctx context.Context, summary *models.MonthlySummary) error
	GetByKey(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error)
	ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]models.MonthlySummary, error)
	CategoryBreakdown(ctx context.Context, userID uuid.UUID, ym models.YearMonth, txType string) ([]models.CategorySummary, error)

	// WithinTransaction runs fn against a repository bound to one SQL transaction.
	// fn returning an error rolls the transaction back.
	WithinTransaction(ctx context.Context, fn func(repo MonthlySummaryRepositoryInterface) error) error
}

type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	MarkRotated(ctx context.Context, tokenID, replacedBy uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(ctx context.Context, token *models.BlacklistedToken) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
