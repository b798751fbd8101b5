package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"budgetbook/internal/config"
	"budgetbook/internal/dto"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories"
	"budgetbook/internal/repositories/repository_mocks"
	"budgetbook/internal/services/service_mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl                 *gomock.Controller
	userRepo             *repository_mocks.MockUserRepositoryInterface
	refreshTokenRepo     *repository_mocks.MockRefreshTokenRepositoryInterface
	blacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	passwordService      *service_mocks.MockPasswordServiceInterface
	tokenService         *service_mocks.MockTokenServiceInterface
	authService          AuthServiceInterface
	ctx                  context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.refreshTokenRepo = repository_mocks.NewMockRefreshTokenRepositoryInterface(s.ctrl)
	s.blacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.authService = NewAuthService(
		s.userRepo,
		s.refreshTokenRepo,
		s.blacklistedTokenRepo,
		s.passwordService,
		s.tokenService,
		NewPrometheusMetrics(prometheus.NewRegistry()),
		&config.SecurityConfig{MaxFailedAttempts: 5},
		slog.Default(),
	)
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) existingUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "minji@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Minji",
		Role:         models.RoleUser,
	}
}

func (s *AuthServiceTestSuite) expectTokenPair(user *models.User) {
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access-token", time.Now().Add(time.Hour), nil)
	s.tokenService.EXPECT().GenerateRefreshToken(user.ID).Return("refresh-token", time.Now().Add(24*time.Hour), nil)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token *models.RefreshToken) error {
			s.Equal(user.ID, token.UserID)
			s.Equal(hashToken("refresh-token"), token.TokenHash)
			s.Len(token.TokenHash, 64)
			return nil
		})
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	req := &dto.RegisterRequest{
		Email:       "New@Example.com",
		Password:    "budget2024",
		DisplayName: " Minji ",
		Currency:    "usd",
	}

	s.userRepo.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	user, err := s.authService.Register(s.ctx, req)

	s.Require().NoError(err)
	s.Equal("new@example.com", user.Email)
	s.Equal("Minji", user.DisplayName)
	s.Equal("USD", user.Currency)
	s.Equal(models.RoleUser, user.Role)
	s.Equal("hashed_password", user.PasswordHash)
}

func (s *AuthServiceTestSuite) TestRegister_EmailTaken() {
	s.userRepo.EXPECT().GetByEmail(gomock.Any(), "minji@example.com").Return(s.existingUser(), nil)

	_, err := s.authService.Register(s.ctx, &dto.RegisterRequest{Email: "minji@example.com", Password: "budget2024", DisplayName: "M"})

	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegister_ConcurrentDuplicate() {
	s.userRepo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(gomock.Any()).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repositories.ErrUserAlreadyExists)

	_, err := s.authService.Register(s.ctx, &dto.RegisterRequest{Email: "a@b.co", Password: "budget2024", DisplayName: "A"})

	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegister_WeakPassword() {
	s.userRepo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword("short").Return("", ErrPasswordTooShort)

	_, err := s.authService.Register(s.ctx, &dto.RegisterRequest{Email: "a@b.co", Password: "short", DisplayName: "A"})

	s.ErrorIs(err, ErrInvalidPassword)
	s.ErrorIs(err, ErrPasswordTooShort)
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.existingUser()
	user.FailedLoginAttempts = 2

	s.userRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("budget2024", user.PasswordHash).Return(true)
	s.userRepo.EXPECT().RecordLogin(gomock.Any(), user).Return(nil)
	s.expectTokenPair(user)

	tokens, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "budget2024"})

	s.Require().NoError(err)
	s.Equal("access-token", tokens.AccessToken)
	s.Equal("refresh-token", tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)
	s.Zero(user.FailedLoginAttempts)
	s.NotNil(user.LastLoginAt)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.userRepo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "x"})

	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordCountsAttempt() {
	user := s.existingUser()

	s.userRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any(), user).Return(nil)

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"})

	s.ErrorIs(err, ErrInvalidCredentials)
	s.Equal(1, user.FailedLoginAttempts)
	s.False(user.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_FifthFailureLocks() {
	user := s.existingUser()
	user.FailedLoginAttempts = 4

	s.userRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any(), user).Return(nil)

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"})

	s.ErrorIs(err, ErrInvalidCredentials)
	s.True(user.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_LockedAccount() {
	user := s.existingUser()
	user.Lock()

	s.userRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "budget2024"})

	s.ErrorIs(err, ErrAccountLocked)
}

func (s *AuthServiceTestSuite) refreshClaims(userID uuid.UUID) *models.CustomClaims {
	return &models.CustomClaims{UserID: userID.String(), TokenType: models.TokenTypeRefresh}
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Rotates() {
	user := s.existingUser()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

	s.tokenService.EXPECT().ValidateRefreshToken("old-refresh").Return(s.refreshClaims(user.ID), nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any(), hashToken("old-refresh")).Return(stored, nil)
	s.userRepo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

	var successorID uuid.UUID
	s.refreshTokenRepo.EXPECT().MarkRotated(gomock.Any(), stored.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, replacedBy uuid.UUID) error {
			successorID = replacedBy
			return nil
		})
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access-2", time.Now().Add(time.Hour), nil)
	s.tokenService.EXPECT().GenerateRefreshToken(user.ID).Return("refresh-2", time.Now().Add(24*time.Hour), nil)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token *models.RefreshToken) error {
			s.Equal(successorID, token.ID)
			return nil
		})

	tokens, err := s.authService.RefreshTokens(s.ctx, "old-refresh")

	s.Require().NoError(err)
	s.Equal("refresh-2", tokens.RefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_InvalidJWT() {
	s.tokenService.EXPECT().ValidateRefreshToken("garbage").Return(nil, ErrInvalidToken)

	_, err := s.authService.RefreshTokens(s.ctx, "garbage")

	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_UnknownHash() {
	userID := uuid.New()
	s.tokenService.EXPECT().ValidateRefreshToken("r").Return(s.refreshClaims(userID), nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrRefreshTokenNotFound)

	_, err := s.authService.RefreshTokens(s.ctx, "r")

	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_ReuseRevokesAllSessions() {
	userID := uuid.New()
	successor := uuid.New()
	revokedAt := time.Now().Add(-time.Minute)
	stored := &models.RefreshToken{
		ID:         uuid.New(),
		UserID:     userID,
		ExpiresAt:  time.Now().Add(time.Hour),
		RevokedAt:  &revokedAt,
		ReplacedBy: &successor,
	}

	s.tokenService.EXPECT().ValidateRefreshToken("reused").Return(s.refreshClaims(userID), nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(stored, nil)
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(gomock.Any(), userID).Return(nil)

	_, err := s.authService.RefreshTokens(s.ctx, "reused")

	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_LostRotationRace() {
	user := s.existingUser()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

	s.tokenService.EXPECT().ValidateRefreshToken("r").Return(s.refreshClaims(user.ID), nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(stored, nil)
	s.userRepo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	s.refreshTokenRepo.EXPECT().MarkRotated(gomock.Any(), stored.ID, gomock.Any()).Return(repositories.ErrRefreshTokenNotFound)

	_, err := s.authService.RefreshTokens(s.ctx, "r")

	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestLogout_BlacklistsAndRevokes() {
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(expiresAt)},
		UserID:           userID.String(),
		TokenType:        models.TokenTypeAccess,
	}

	s.tokenService.EXPECT().ValidateAccessToken("access").Return(claims, nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token *models.BlacklistedToken) error {
			s.Equal("jti-1", token.JTI)
			s.Equal(userID, token.UserID)
			s.True(expiresAt.Equal(token.ExpiresAt))
			return nil
		})
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(gomock.Any(), userID).Return(nil)

	s.NoError(s.authService.Logout(s.ctx, "access"))
}

func (s *AuthServiceTestSuite) TestLogout_InvalidTokenIsNoop() {
	s.tokenService.EXPECT().ValidateAccessToken("expired").Return(nil, ErrExpiredToken)

	s.NoError(s.authService.Logout(s.ctx, "expired"))
}

func (s *AuthServiceTestSuite) TestLogout_BlacklistFailure() {
	userID := uuid.New()
	s.tokenService.EXPECT().ValidateAccessToken("access").Return(&models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-2"},
		UserID:           userID.String(),
	}, nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	s.Error(s.authService.Logout(s.ctx, "access"))
}

func (s *AuthServiceTestSuite) TestGetProfile() {
	user := s.existingUser()
	s.userRepo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	s.userRepo.EXPECT().GetByID(gomock.Any(), gomock.Not(user.ID)).Return(nil, repositories.ErrUserNotFound)

	found, err := s.authService.GetProfile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, found.Email)

	_, err = s.authService.GetProfile(s.ctx, uuid.New())
	s.ErrorIs(err, ErrUserNotFound)
}
