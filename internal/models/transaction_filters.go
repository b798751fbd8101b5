package models

import (
	"github.com/google/uuid"
)

// TransactionFilters narrows a transaction listing. Zero values mean no filter.
type TransactionFilters struct {
	UserID   uuid.UUID
	Month    *YearMonth
	Type     string
	Category string
	Search   string
	Offset   int
	Limit    int
}
