package handlers

import (
	"errors"
	"strings"

	"budgetbook/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware.
const (
	UserIDContextKey      = "user_id"
	AccessTokenContextKey = "access_token"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = errors.New("unauthorized")

// getUserIDFromContext returns ErrUnauthorized if user ID is missing or invalid
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

func getAccessTokenFromContext(c echo.Context) string {
	token, _ := c.Get(AccessTokenContextKey).(string)
	return token
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(name)))
}

func parseYearMonthParam(c echo.Context) (models.YearMonth, error) {
	return models.ParseYearMonth(strings.TrimSpace(c.Param("yearMonth")))
}

func getClientIP(c echo.Context) string {
	return c.RealIP()
}
