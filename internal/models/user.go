package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	MaxFailedLoginAttempts = 5

	DefaultCurrency = "KRW"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// User owns transactions and their monthly summaries.
type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName         string         `gorm:"type:varchar(100);not null" json:"display_name"`
	Currency            string         `gorm:"type:char(3);not null;default:'KRW'" json:"currency"`
	Locale              string         `gorm:"type:varchar(10);not null;default:'ko'" json:"locale"`
	Role                string         `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedAt            *time.Time     `gorm:"index" json:"locked_at,omitempty"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Currency == "" {
		u.Currency = DefaultCurrency
	}
	if u.Locale == "" {
		u.Locale = "ko"
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	// map based Updates carry no full struct to validate
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	return u.Validate()
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}

	if !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}

	if strings.TrimSpace(u.DisplayName) == "" {
		return errors.New("display name is required")
	}

	if !currencyRegex.MatchString(u.Currency) {
		return fmt.Errorf("invalid currency: %s", u.Currency)
	}

	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", u.Role)
	}

	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *User) Lock() {
	now := time.Now()
	u.LockedAt = &now
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

// RegisterFailedLogin counts a bad password and reports whether the account is now locked.
func (u *User) RegisterFailedLogin(maxAttempts int) bool {
	if maxAttempts <= 0 {
		maxAttempts = MaxFailedLoginAttempts
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		u.Lock()
		return true
	}
	return false
}

func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedLoginAttempts = 0
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) TableName() string {
	return "users"
}
