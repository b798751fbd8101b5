package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlacklistedToken marks an access token id as unusable until it would have expired anyway.
type BlacklistedToken struct {
	JTI           string    `gorm:"type:varchar(64);primary_key" json:"jti"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
	BlacklistedAt time.Time `gorm:"not null" json:"blacklisted_at"`
}

func NewBlacklistedToken(jti string, userID uuid.UUID, expiresAt time.Time) *BlacklistedToken {
	return &BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

func (bt *BlacklistedToken) BeforeCreate(tx *gorm.DB) error {
	if bt.BlacklistedAt.IsZero() {
		bt.BlacklistedAt = time.Now()
	}
	return nil
}

func (bt *BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
