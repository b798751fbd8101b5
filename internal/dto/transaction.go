package dto

import (
	"time"

	"budgetbook/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the body of both create and full update.
type TransactionRequest struct {
	Date          string          `json:"date" validate:"required,date"`
	Amount        decimal.Decimal `json:"amount" validate:"positive_amount"`
	Type          string          `json:"type" validate:"required,transaction_type"`
	Category      string          `json:"category" validate:"required,max=50"`
	Description   string          `json:"description" validate:"max=500"`
	Memo          *string         `json:"memo,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod *string         `json:"paymentMethod,omitempty" validate:"omitempty,max=50"`
}

// TransactionListQuery is bound from the query string of GET /api/transactions.
type TransactionListQuery struct {
	Month    string `query:"month" validate:"omitempty,year_month"`
	Type     string `query:"type" validate:"omitempty,transaction_type"`
	Category string `query:"category" validate:"omitempty,max=50"`
	Search   string `query:"q" validate:"omitempty,max=100"`
	Offset   int    `query:"offset" validate:"min=0"`
	Limit    int    `query:"limit" validate:"min=0,max=200"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Memo          *string         `json:"memo,omitempty"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PaginationInfo contains offset pagination metadata
type PaginationInfo struct {
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

func NewPaginationInfo(offset, limit int, total int64) PaginationInfo {
	return PaginationInfo{
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+limit) < total,
	}
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		Date:          t.Date.Format(models.DateLayout),
		Amount:        t.Amount,
		Type:          t.Type,
		Category:      t.Category,
		Description:   t.Description,
		Memo:          t.Memo,
		PaymentMethod: t.PaymentMethod,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func NewTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, NewTransactionResponse(&transactions[i]))
	}
	return responses
}
