package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"budgetbook/internal/dto"
	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/services"

	"github.com/labstack/echo/v4"
)

// SummaryHandler serves the derived monthly summaries
type SummaryHandler struct {
	summaryService services.SummaryServiceInterface
	now            func() time.Time
}

func NewSummaryHandler(summaryService services.SummaryServiceInterface) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, now: time.Now}
}

// GetMonth returns the summary of one month, computing it on first access
// @Summary Monthly summary
// @Tags Summary
// @Security BearerAuth
// @Produce json
// @Param yearMonth path string true "YYYY-MM"
// @Success 200 {object} SuccessResponse{data=dto.MonthlySummaryResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_007"
// @Router /summary/{yearMonth} [get]
func (h *SummaryHandler) GetMonth(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	ym, err := parseYearMonthParam(c)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidYearMonth)
	}

	summary, err := h.summaryService.Get(c.Request().Context(), userID, ym)
	if err != nil {
		return h.summaryError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewMonthlySummaryResponse(summary))
}

// Recompute rebuilds one month from the ledger
// @Summary Force recompute
// @Tags Summary
// @Security BearerAuth
// @Produce json
// @Param yearMonth path string true "YYYY-MM"
// @Success 200 {object} SuccessResponse{data=dto.MonthlySummaryResponse}
// @Failure 500 {object} errors.ErrorResponse "SUMMARY_001"
// @Router /summary/{yearMonth}/recompute [post]
func (h *SummaryHandler) Recompute(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	ym, err := parseYearMonthParam(c)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidYearMonth)
	}

	summary, err := h.summaryService.Recompute(c.Request().Context(), userID, ym)
	if err != nil {
		return h.summaryError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewMonthlySummaryResponse(summary))
}

// Categories returns per-category totals of one type within a month
// @Summary Category breakdown
// @Tags Summary
// @Security BearerAuth
// @Produce json
// @Param yearMonth path string true "YYYY-MM"
// @Param type query string false "income, expense or savings" default(expense)
// @Success 200 {object} SuccessResponse{data=dto.CategoryBreakdownResponse}
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_003"
// @Router /summary/{yearMonth}/categories [get]
func (h *SummaryHandler) Categories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	ym, err := parseYearMonthParam(c)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidYearMonth)
	}
	txType := c.QueryParam("type")
	if txType == "" {
		txType = models.TransactionTypeExpense
	}

	categories, err := h.summaryService.CategoryBreakdown(c.Request().Context(), userID, ym, txType)
	if err != nil {
		return h.summaryError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.CategoryBreakdownResponse{
		YearMonth:  ym.String(),
		Type:       txType,
		Categories: categories,
	})
}

// ListYear returns the twelve monthly rows of a year
// @Summary Year overview
// @Tags Summary
// @Security BearerAuth
// @Produce json
// @Param year query int false "Four digit year, defaults to the current year"
// @Success 200 {object} SuccessResponse{data=dto.YearSummaryResponse}
// @Failure 400 {object} errors.ErrorResponse "SUMMARY_002"
// @Router /summary [get]
func (h *SummaryHandler) ListYear(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	year := h.now().UTC().Year()
	if raw := c.QueryParam("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || len(raw) != 4 {
			return SendError(c, apierrors.SummaryInvalidYear)
		}
	}

	summaries, err := h.summaryService.ListYear(c.Request().Context(), userID, year)
	if err != nil {
		return h.summaryError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewYearSummaryResponse(year, summaries))
}

func (h *SummaryHandler) summaryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidYear):
		return SendError(c, apierrors.SummaryInvalidYear)
	case errors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, apierrors.TransactionInvalidType)
	case errors.Is(err, services.ErrSummaryRecompute):
		return SendCodedServerError(c, apierrors.SummaryRecomputeFailed, err)
	}
	return SendSystemError(c, err)
}
