package handlers

import (
	"errors"
	"net/http"

	"budgetbook/internal/dto"
	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/services"

	"github.com/labstack/echo/v4"
)

// QuoteHandler serves cached stock quotes
type QuoteHandler struct {
	quoteService services.QuoteServiceInterface
}

func NewQuoteHandler(quoteService services.QuoteServiceInterface) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// GetQuote returns the latest quote for a symbol
// @Summary Stock quote
// @Tags Quotes
// @Security BearerAuth
// @Produce json
// @Param symbol path string true "Ticker symbol, e.g. AAPL or 005930.KS"
// @Success 200 {object} SuccessResponse{data=dto.QuoteResponse}
// @Failure 400 {object} errors.ErrorResponse "QUOTE_001"
// @Failure 404 {object} errors.ErrorResponse "QUOTE_002"
// @Failure 502 {object} errors.ErrorResponse "QUOTE_003"
// @Failure 503 {object} errors.ErrorResponse "QUOTE_004"
// @Router /quotes/{symbol} [get]
func (h *QuoteHandler) GetQuote(c echo.Context) error {
	quote, err := h.quoteService.GetQuote(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSymbol):
			return SendError(c, apierrors.QuoteInvalidSymbol)
		case errors.Is(err, services.ErrQuoteNotFound):
			return SendError(c, apierrors.QuoteNotFound)
		case errors.Is(err, services.ErrQuoteUnavailable):
			return SendCodedServerError(c, apierrors.QuoteUpstreamUnavailable, err)
		case errors.Is(err, services.ErrQuoteUpstream):
			return SendCodedServerError(c, apierrors.QuoteUpstreamFailed, err)
		}
		return SendSystemError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewQuoteResponse(quote))
}
