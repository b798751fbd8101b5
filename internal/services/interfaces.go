package services

import (
	"context"
	"time"

	"budgetbook/internal/dto"
	"budgetbook/internal/models"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// TransactionServiceInterface mutates the ledger and keeps the affected monthly summaries current.
type TransactionServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.TransactionRequest) (*models.Transaction, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *dto.TransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)
}

// SummaryServiceInterface owns the derived monthly_summary rows.
type SummaryServiceInterface interface {
	// Recompute rebuilds one month from the ledger and stores it.
	Recompute(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error)
	Get(ctx context.Context, userID uuid.UUID, ym models.YearMonth) (*models.MonthlySummary, error)
	ListYear(ctx context.Context, userID uuid.UUID, year int) ([]models.MonthlySummary, error)
	CategoryBreakdown(ctx context.Context, userID uuid.UUID, ym models.YearMonth, txType string) ([]models.CategorySummary, error)
	RebuildAll(ctx context.Context, userID uuid.UUID) ([]models.YearMonth, error)
}

type QuoteServiceInterface interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// QuoteProviderInterface fetches a fresh quote from an upstream market data API.
type QuoteProviderInterface interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}
