package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken stores the hash of an issued refresh token. A rotated token
// points at its successor through ReplacedBy.
type RefreshToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash  string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `gorm:"type:uuid" json:"replaced_by,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now()
	}
	return nil
}

func (rt *RefreshToken) IsUsable(at time.Time) bool {
	return rt.RevokedAt == nil && at.Before(rt.ExpiresAt)
}

// WasRotated reports reuse of a token that already produced a successor.
func (rt *RefreshToken) WasRotated() bool {
	return rt.ReplacedBy != nil
}

func (rt *RefreshToken) TableName() string {
	return "refresh_tokens"
}
