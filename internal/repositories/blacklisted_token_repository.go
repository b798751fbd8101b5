package repositories

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blacklistedTokenRepository struct {
	db *gorm.DB
}

func NewBlacklistedTokenRepository(db *gorm.DB) BlacklistedTokenRepositoryInterface {
	return &blacklistedTokenRepository{db: db}
}

// Create is idempotent: blacklisting the same jti twice keeps the first row.
func (r *blacklistedTokenRepository) Create(ctx context.Context, token *models.BlacklistedToken) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(token).Error
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *blacklistedTokenRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlacklistedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

func (r *blacklistedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.BlacklistedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired blacklisted tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
