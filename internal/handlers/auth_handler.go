package handlers

import (
	"errors"
	"net/http"

	"budgetbook/internal/dto"
	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or VALIDATION_009"
// @Failure 409 {object} errors.ErrorResponse "AUTH_007"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationMalformedBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return SendError(c, apierrors.AuthEmailAlreadyRegistered)
		case errors.Is(err, services.ErrInvalidPassword):
			return SendError(c, apierrors.ValidationGeneral, apierrors.WithMessage(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    dto.NewUserProfileResponse(user),
		Message: "User registered successfully",
	})
}

// Login handles user authentication
// @Summary Login user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} SuccessResponse{data=dto.TokenResponse}
// @Failure 401 {object} errors.ErrorResponse "AUTH_001"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationMalformedBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountLocked):
			return SendError(c, apierrors.AuthAccountLocked)
		case errors.Is(err, services.ErrInvalidCredentials):
			return SendError(c, apierrors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return SendSuccess(c, http.StatusOK, tokens)
}

// RefreshToken rotates a refresh token into a new token pair
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} SuccessResponse{data=dto.TokenResponse}
// @Failure 401 {object} errors.ErrorResponse "AUTH_008"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationMalformedBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRefreshToken):
			return SendError(c, apierrors.AuthInvalidRefreshToken)
		case errors.Is(err, services.ErrAccountLocked):
			return SendError(c, apierrors.AuthAccountLocked)
		}
		return SendSystemError(c, err)
	}

	return SendSuccess(c, http.StatusOK, tokens)
}

// Logout blacklists the presented access token and revokes refresh tokens
// @Summary Logout user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := getAccessTokenFromContext(c)
	if token == "" {
		return SendError(c, apierrors.AuthMissingToken)
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return SendSystemError(c, err)
	}

	return SendMessage(c, http.StatusOK, "Logout successful")
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	user, err := h.authService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return SendError(c, apierrors.AuthInvalidTokenFormat, apierrors.WithDetails("User no longer exists"))
		}
		return SendSystemError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewUserProfileResponse(user))
}
