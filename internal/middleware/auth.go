package middleware

import (
	"errors"
	"log/slog"

	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/handlers"
	"budgetbook/internal/repositories"
	"budgetbook/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	UserEmailContextKey = "user_email"
	UserRoleContextKey  = "user_role"
	TokenJTIContextKey  = "token_jti"
)

// RequireAuth admits requests carrying a valid, unrevoked access token and
// stores the caller's identity on the context.
func RequireAuth(tokenService services.TokenServiceInterface, blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return handlers.SendError(c, apierrors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, apierrors.AuthExpiredToken)
				}
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat)
			}

			revoked, err := blacklistedTokenRepo.IsBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				slog.ErrorContext(c.Request().Context(), "Blacklist lookup failed",
					"trace_id", GetTraceID(c), "jti", claims.ID, "error", err)
				return handlers.SendSystemError(c, err)
			}
			if revoked {
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat, apierrors.WithDetails("Token has been revoked"))
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil || userID == uuid.Nil {
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat, apierrors.WithDetails("Invalid user ID in token"))
			}

			c.Set(handlers.UserIDContextKey, userID)
			c.Set(handlers.AccessTokenContextKey, token)
			c.Set(UserEmailContextKey, claims.Email)
			c.Set(UserRoleContextKey, claims.Role)
			c.Set(TokenJTIContextKey, claims.ID)

			return next(c)
		}
	}
}
