package services

import (
	"errors"
	"fmt"
	"unicode"

	"budgetbook/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMinPasswordLength = 8
	MaxPasswordLength        = 72 // bcrypt ignores bytes past 72
)

var (
	ErrPasswordEmpty    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNoLetter = errors.New("password must contain at least one letter")
	ErrPasswordNoNumber = errors.New("password must contain at least one number")
)

// PasswordService handles password hashing and validation
type PasswordService struct {
	cost      int
	minLength int
}

func NewPasswordService(cfg *config.SecurityConfig) PasswordServiceInterface {
	ps := &PasswordService{
		cost:      bcrypt.DefaultCost,
		minLength: DefaultMinPasswordLength,
	}
	if cfg != nil {
		if cfg.BCryptCost >= bcrypt.MinCost && cfg.BCryptCost <= bcrypt.MaxCost {
			ps.cost = cfg.BCryptCost
		}
		if cfg.PasswordMinLength > 0 {
			ps.minLength = cfg.PasswordMinLength
		}
	}
	return ps
}

func (ps *PasswordService) ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}
	if len(password) < ps.minLength {
		return fmt.Errorf("%w: at least %d characters required", ErrPasswordTooShort, ps.minLength)
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if !hasLetter {
		return ErrPasswordNoLetter
	}
	if !hasNumber {
		return ErrPasswordNoNumber
	}
	return nil
}

// HashPassword validates and hashes a password using bcrypt
func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func (ps *PasswordService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
