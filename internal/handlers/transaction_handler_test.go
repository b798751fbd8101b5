package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"budgetbook/internal/dto"
	"budgetbook/internal/models"
	"budgetbook/internal/services"
	"budgetbook/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	e                  *echo.Echo
	ctrl               *gomock.Controller
	transactionService *service_mocks.MockTransactionServiceInterface
	handler            *TransactionHandler
	userID             uuid.UUID
}

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.e = newTestEcho()
	s.ctrl = gomock.NewController(s.T())
	s.transactionService = service_mocks.NewMockTransactionServiceInterface(s.ctrl)
	s.handler = NewTransactionHandler(s.transactionService)
	s.userID = uuid.New()
}

func (s *TransactionHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransactionHandlerTestSuite) fakeTransaction() *models.Transaction {
	memo := gofakeit.Sentence(4)
	return &models.Transaction{
		ID:          uuid.New(),
		UserID:      s.userID,
		Date:        time.Date(2024, 3, gofakeit.Number(1, 28), 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(int64(gofakeit.Number(1000, 500000))),
		Type:        models.TransactionTypeExpense,
		Category:    gofakeit.RandomString([]string{"food", "transport", "housing"}),
		Description: gofakeit.Company(),
		Memo:        &memo,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func requestBody(t *models.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"date":        t.Date.Format(models.DateLayout),
		"amount":      t.Amount.String(),
		"type":        t.Type,
		"category":    t.Category,
		"description": t.Description,
	}
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction() {
	txn := s.fakeTransaction()
	s.transactionService.EXPECT().
		Create(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, req *dto.TransactionRequest) (*models.Transaction, error) {
			s.True(txn.Amount.Equal(req.Amount))
			s.Equal(txn.Category, req.Category)
			return txn, nil
		})

	c, rec := newContext(s.e, http.MethodPost, "/api/transactions", requestBody(txn))
	authenticate(c, s.userID)
	s.NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusCreated, rec.Code)
	var got dto.TransactionResponse
	decodeData(s.T(), rec, &got)
	s.Equal(txn.ID.String(), got.ID)
	s.Equal(txn.Date.Format(models.DateLayout), got.Date)
	s.Equal(*txn.Memo, *got.Memo)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_ValidationFailures() {
	cases := map[string]func(map[string]interface{}){
		"zero amount":     func(b map[string]interface{}) { b["amount"] = "0" },
		"sub-cent amount": func(b map[string]interface{}) { b["amount"] = "0.004" },
		"three decimals":  func(b map[string]interface{}) { b["amount"] = "12.345" },
		"overflow amount": func(b map[string]interface{}) { b["amount"] = "10000000000000" },
		"unknown type":    func(b map[string]interface{}) { b["type"] = "transfer" },
		"bad date":        func(b map[string]interface{}) { b["date"] = "2024-02-30" },
		"no category":     func(b map[string]interface{}) { delete(b, "category") },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			body := requestBody(s.fakeTransaction())
			mutate(body)

			c, _ := newContext(s.e, http.MethodPost, "/api/transactions", body)
			authenticate(c, s.userID)
			err := s.handler.CreateTransaction(c)

			var validationErrs validator.ValidationErrors
			s.ErrorAs(err, &validationErrs)
		})
	}
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_RecomputeFailure() {
	txn := s.fakeTransaction()
	s.transactionService.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).
		Return(txn, fmt.Errorf("%w: %w", services.ErrSummaryRecompute, fmt.Errorf("deadlock detected")))

	c, rec := newContext(s.e, http.MethodPost, "/api/transactions", requestBody(txn))
	authenticate(c, s.userID)
	s.NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusInternalServerError, rec.Code)
	resp := decodeError(s.T(), rec)
	s.Equal("SUMMARY_001", resp.Code)
	s.Equal("Internal server error", resp.Error)
	s.Empty(resp.Details)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_ExposesDetailsWhenEnabled() {
	txn := s.fakeTransaction()
	s.transactionService.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).
		Return(nil, fmt.Errorf("insert failed: duplicate key"))

	c, rec := newContext(s.e, http.MethodPost, "/api/transactions", requestBody(txn))
	c.Set(ExposeDetailsContextKey, true)
	authenticate(c, s.userID)
	s.NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusInternalServerError, rec.Code)
	resp := decodeError(s.T(), rec)
	s.Equal("SYSTEM_001", resp.Code)
	s.Equal("Internal server error", resp.Error)
	s.Equal([]string{"insert failed: duplicate key"}, resp.Details)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_Unauthenticated() {
	c, rec := newContext(s.e, http.MethodPost, "/api/transactions", requestBody(s.fakeTransaction()))
	s.NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction() {
	txn := s.fakeTransaction()
	s.transactionService.EXPECT().Get(gomock.Any(), s.userID, txn.ID).Return(txn, nil)

	c, rec := newContext(s.e, http.MethodGet, "/api/transactions/"+txn.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(txn.ID.String())
	authenticate(c, s.userID)
	s.NoError(s.handler.GetTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_NotFoundAndBadID() {
	id := uuid.New()
	s.transactionService.EXPECT().Get(gomock.Any(), s.userID, id).Return(nil, services.ErrTransactionNotFound)

	c, rec := newContext(s.e, http.MethodGet, "/api/transactions/"+id.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	authenticate(c, s.userID)
	s.NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("TRANSACTION_001", decodeError(s.T(), rec).Code)

	c, rec = newContext(s.e, http.MethodGet, "/api/transactions/not-a-uuid", nil)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	authenticate(c, s.userID)
	s.NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_008", decodeError(s.T(), rec).Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction() {
	txn := s.fakeTransaction()
	txn.Date = time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	s.transactionService.EXPECT().Update(gomock.Any(), s.userID, txn.ID, gomock.Any()).Return(txn, nil)

	c, rec := newContext(s.e, http.MethodPut, "/api/transactions/"+txn.ID.String(), requestBody(txn))
	c.SetParamNames("id")
	c.SetParamValues(txn.ID.String())
	authenticate(c, s.userID)
	s.NoError(s.handler.UpdateTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
	var got dto.TransactionResponse
	decodeData(s.T(), rec, &got)
	s.Equal("2024-04-02", got.Date)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	id := uuid.New()
	s.transactionService.EXPECT().Delete(gomock.Any(), s.userID, id).Return(nil)

	c, rec := newContext(s.e, http.MethodDelete, "/api/transactions/"+id.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	authenticate(c, s.userID)
	s.NoError(s.handler.DeleteTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Transaction deleted")
}

func (s *TransactionHandlerTestSuite) TestListTransactions() {
	txns := []models.Transaction{*s.fakeTransaction(), *s.fakeTransaction()}
	ym := models.MustParseYearMonth("2024-03")
	s.transactionService.EXPECT().
		List(gomock.Any(), models.TransactionFilters{
			UserID:   s.userID,
			Month:    &ym,
			Type:     "expense",
			Category: "food",
			Search:   "coffee",
			Offset:   0,
			Limit:    2,
		}).
		Return(txns, int64(5), nil)

	c, rec := newContext(s.e, http.MethodGet, "/api/transactions?month=2024-03&type=expense&category=food&q=coffee&limit=2", nil)
	authenticate(c, s.userID)
	s.NoError(s.handler.ListTransactions(c))

	s.Equal(http.StatusOK, rec.Code)
	var got []dto.TransactionResponse
	envelope := decodeData(s.T(), rec, &got)
	s.Len(got, 2)
	s.JSONEq(`{"offset":0,"limit":2,"total":5,"hasMore":true}`, string(envelope["meta"]))
}

func (s *TransactionHandlerTestSuite) TestListTransactions_DefaultLimit() {
	s.transactionService.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
			s.Equal(defaultPageLimit, filters.Limit)
			s.Nil(filters.Month)
			return nil, 0, nil
		})

	c, rec := newContext(s.e, http.MethodGet, "/api/transactions", nil)
	authenticate(c, s.userID)
	s.NoError(s.handler.ListTransactions(c))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"data":[]`)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_InvalidQuery() {
	c, _ := newContext(s.e, http.MethodGet, "/api/transactions?month=2024-13", nil)
	authenticate(c, s.userID)
	var validationErrs validator.ValidationErrors
	s.ErrorAs(s.handler.ListTransactions(c), &validationErrs)

	c, rec := newContext(s.e, http.MethodGet, "/api/transactions?limit=ten", nil)
	authenticate(c, s.userID)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}
