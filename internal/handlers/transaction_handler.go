package handlers

import (
	"errors"
	"net/http"
	"strings"

	"budgetbook/internal/dto"
	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultPageLimit = 20

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// ListTransactions returns the caller's transactions, newest first
// @Summary List transactions
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param month query string false "YYYY-MM"
// @Param type query string false "income, expense or savings"
// @Param category query string false "Category"
// @Param q query string false "Search in description and memo"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size (max 200)" default(20)
// @Success 200 {object} SuccessResponse{data=[]dto.TransactionResponse,meta=dto.PaginationInfo}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	var query dto.TransactionListQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithDetails("offset and limit must be integers"))
	}
	if err := c.Validate(&query); err != nil {
		return err
	}
	if query.Limit == 0 {
		query.Limit = defaultPageLimit
	}

	filters := models.TransactionFilters{
		UserID:   userID,
		Type:     query.Type,
		Category: strings.TrimSpace(query.Category),
		Search:   strings.TrimSpace(query.Search),
		Offset:   query.Offset,
		Limit:    query.Limit,
	}
	if query.Month != "" {
		ym, err := models.ParseYearMonth(query.Month)
		if err != nil {
			return SendError(c, apierrors.ValidationInvalidYearMonth)
		}
		filters.Month = &ym
	}

	transactions, total, err := h.transactionService.List(c.Request().Context(), filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	return SendSuccessWithMeta(c, http.StatusOK,
		dto.NewTransactionResponses(transactions),
		dto.NewPaginationInfo(filters.Offset, filters.Limit, total))
}

// CreateTransaction records a transaction and recomputes its month
// @Summary Create transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_004"
// @Failure 500 {object} errors.ErrorResponse "SUMMARY_001"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	req, errResp := h.bindRequest(c)
	if req == nil {
		return errResp
	}

	transaction, err := h.transactionService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return h.mutationError(c, err)
	}

	return SendSuccess(c, http.StatusCreated, dto.NewTransactionResponse(transaction))
}

// GetTransaction returns one transaction owned by the caller
// @Summary Get transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidID)
	}

	transaction, err := h.transactionService.Get(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			return SendError(c, apierrors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewTransactionResponse(transaction))
}

// UpdateTransaction replaces a transaction and recomputes the affected months
// @Summary Update transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.TransactionRequest true "Transaction"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidID)
	}

	req, errResp := h.bindRequest(c)
	if req == nil {
		return errResp
	}

	transaction, err := h.transactionService.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return h.mutationError(c, err)
	}

	return SendSuccess(c, http.StatusOK, dto.NewTransactionResponse(transaction))
}

// DeleteTransaction removes a transaction and recomputes its month
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidID)
	}

	if err := h.transactionService.Delete(c.Request().Context(), userID, id); err != nil {
		return h.mutationError(c, err)
	}

	return SendMessage(c, http.StatusOK, "Transaction deleted")
}

// bindRequest returns a nil request when the response has already been produced
// or when the returned error must reach the central error handler.
func (h *TransactionHandler) bindRequest(c echo.Context) (*dto.TransactionRequest, error) {
	var req dto.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, SendError(c, apierrors.ValidationMalformedBody)
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *TransactionHandler) mutationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, apierrors.TransactionNotFound)
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrAmountPrecision),
		errors.Is(err, models.ErrAmountTooLarge):
		return SendError(c, apierrors.TransactionInvalidAmount)
	case errors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, apierrors.TransactionInvalidType)
	case errors.Is(err, services.ErrTransactionDateFormat):
		return SendError(c, apierrors.ValidationInvalidDate)
	case errors.Is(err, services.ErrInvalidTransaction):
		return SendError(c, apierrors.TransactionValidationFailed, apierrors.WithDetails(err.Error()))
	case errors.Is(err, services.ErrSummaryRecompute):
		return SendCodedServerError(c, apierrors.SummaryRecomputeFailed, err)
	}
	return SendSystemError(c, err)
}
