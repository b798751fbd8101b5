package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbook/internal/config"
	"budgetbook/internal/dto"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidPassword     = errors.New("password does not meet requirements")
	ErrUserNotFound        = errors.New("user not found")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	metrics              MetricsRecorderInterface
	maxFailedAttempts    int
	logger               *slog.Logger
	now                  func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	securityConfig *config.SecurityConfig,
	logger *slog.Logger,
) AuthServiceInterface {
	maxFailedAttempts := models.MaxFailedLoginAttempts
	if securityConfig != nil && securityConfig.MaxFailedAttempts > 0 {
		maxFailedAttempts = securityConfig.MaxFailedAttempts
	}
	return &AuthService{
		userRepo:             userRepo,
		refreshTokenRepo:     refreshTokenRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		metrics:              metrics,
		maxFailedAttempts:    maxFailedAttempts,
		logger:               logger,
		now:                  time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		s.recordEvent("register_conflict")
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Currency:     strings.ToUpper(req.Currency),
		Locale:       req.Locale,
		Role:         models.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recordEvent("register")
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.recordEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.recordEvent("login_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		locked := user.RegisterFailedLogin(s.maxFailedAttempts)
		if err := s.userRepo.UpdateFailedLoginAttempts(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}
		if locked {
			s.recordEvent("account_locked")
			s.logger.WarnContext(ctx, "account locked after failed logins",
				"user_id", user.ID,
				"attempts", user.FailedLoginAttempts)
		}
		s.recordEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	user.RecordLogin()
	if err := s.userRepo.RecordLogin(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to record login",
			"error", err,
			"user_id", user.ID)
	}

	tokens, err := s.generateTokens(ctx, user, uuid.New())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.recordEvent("login")
	return tokens, nil
}

// RefreshTokens exchanges a refresh token for a new pair. Each refresh token
// works once; presenting an already rotated one revokes every session of the user.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.recordEvent("refresh_failed")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			s.recordEvent("refresh_failed")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	if storedToken.UserID != userID {
		return nil, ErrInvalidRefreshToken
	}

	if storedToken.WasRotated() {
		s.logger.WarnContext(ctx, "rotated refresh token presented again, revoking sessions",
			"user_id", userID,
			"token_id", storedToken.ID)
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke refresh tokens", "error", err, "user_id", userID)
		}
		s.recordEvent("refresh_reuse")
		return nil, ErrInvalidRefreshToken
	}

	if !storedToken.IsUsable(s.now()) {
		s.recordEvent("refresh_failed")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	successorID := uuid.New()
	if err := s.refreshTokenRepo.MarkRotated(ctx, storedToken.ID, successorID); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			// lost a race with a concurrent refresh of the same token
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	tokens, err := s.generateTokens(ctx, user, successorID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	s.recordEvent("refresh")
	return tokens, nil
}

// Logout blacklists the access token and revokes the user's refresh tokens.
// A token that no longer validates is already unusable and is ignored.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil
	}

	expiresAt := s.now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.blacklistedTokenRepo.Create(ctx, models.NewBlacklistedToken(claims.ID, userID, expiresAt)); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke refresh tokens",
			"error", err,
			"user_id", userID)
	}

	s.recordEvent("logout")
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *models.User, refreshTokenID uuid.UUID) (*dto.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshTokenModel := &models.RefreshToken{
		ID:        refreshTokenID,
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) recordEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(MetricAuthEvent, map[string]string{"event_type": eventType})
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
