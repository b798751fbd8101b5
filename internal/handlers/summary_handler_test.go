package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetbook/internal/dto"
	"budgetbook/internal/models"
	"budgetbook/internal/services"
	"budgetbook/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SummaryHandlerTestSuite struct {
	suite.Suite
	e              *echo.Echo
	ctrl           *gomock.Controller
	summaryService *service_mocks.MockSummaryServiceInterface
	handler        *SummaryHandler
	userID         uuid.UUID
}

func TestSummaryHandlerSuite(t *testing.T) {
	suite.Run(t, new(SummaryHandlerTestSuite))
}

func (s *SummaryHandlerTestSuite) SetupTest() {
	s.e = newTestEcho()
	s.ctrl = gomock.NewController(s.T())
	s.summaryService = service_mocks.NewMockSummaryServiceInterface(s.ctrl)
	s.handler = NewSummaryHandler(s.summaryService)
	s.handler.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	s.userID = uuid.New()
}

func (s *SummaryHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SummaryHandlerTestSuite) monthContext(method, target, yearMonth string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newContext(s.e, method, target, nil)
	c.SetParamNames("yearMonth")
	c.SetParamValues(yearMonth)
	authenticate(c, s.userID)
	return c, rec
}

func (s *SummaryHandlerTestSuite) march() *models.MonthlySummary {
	return &models.MonthlySummary{
		ID:               uuid.New(),
		YearMonth:        "2024-03",
		UserID:           s.userID,
		IncomeTotal:      decimal.NewFromInt(3000000),
		ExpenseTotal:     decimal.NewFromInt(1250000),
		SavingsTotal:     decimal.NewFromInt(500000),
		TransactionCount: 14,
		UpdatedAt:        time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC),
	}
}

func (s *SummaryHandlerTestSuite) TestGetMonth() {
	ym := models.MustParseYearMonth("2024-03")
	s.summaryService.EXPECT().Get(gomock.Any(), s.userID, ym).Return(s.march(), nil)

	c, rec := s.monthContext(http.MethodGet, "/api/summary/2024-03", "2024-03")
	s.NoError(s.handler.GetMonth(c))

	s.Equal(http.StatusOK, rec.Code)
	var got dto.MonthlySummaryResponse
	decodeData(s.T(), rec, &got)
	s.Equal("2024-03", got.YearMonth)
	s.True(decimal.NewFromInt(1250000).Equal(got.Balance))
	s.Equal(int64(14), got.TransactionCount)
}

func (s *SummaryHandlerTestSuite) TestGetMonth_InvalidYearMonth() {
	for _, raw := range []string{"2024-3", "2024-13", "march", ""} {
		c, rec := s.monthContext(http.MethodGet, "/api/summary/"+raw, raw)
		s.NoError(s.handler.GetMonth(c))
		s.Equal(http.StatusBadRequest, rec.Code, raw)
		s.Equal("VALIDATION_007", decodeError(s.T(), rec).Code)
	}
}

func (s *SummaryHandlerTestSuite) TestRecompute() {
	ym := models.MustParseYearMonth("2024-03")
	s.summaryService.EXPECT().Recompute(gomock.Any(), s.userID, ym).Return(s.march(), nil)

	c, rec := s.monthContext(http.MethodPost, "/api/summary/2024-03/recompute", "2024-03")
	s.NoError(s.handler.Recompute(c))

	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerTestSuite) TestRecompute_Failure() {
	s.summaryService.EXPECT().Recompute(gomock.Any(), s.userID, gomock.Any()).
		Return(nil, fmt.Errorf("%w: %w", services.ErrSummaryRecompute, errors.New("connection refused")))

	c, rec := s.monthContext(http.MethodPost, "/api/summary/2024-03/recompute", "2024-03")
	s.NoError(s.handler.Recompute(c))

	s.Equal(http.StatusInternalServerError, rec.Code)
	resp := decodeError(s.T(), rec)
	s.Equal("SUMMARY_001", resp.Code)
	s.NotContains(rec.Body.String(), "connection refused")
}

func (s *SummaryHandlerTestSuite) TestCategories_DefaultsToExpense() {
	ym := models.MustParseYearMonth("2024-03")
	s.summaryService.EXPECT().CategoryBreakdown(gomock.Any(), s.userID, ym, "expense").
		Return([]models.CategorySummary{{Category: "food", TotalAmount: decimal.NewFromInt(420000), TransactionCount: 9}}, nil)

	c, rec := s.monthContext(http.MethodGet, "/api/summary/2024-03/categories", "2024-03")
	s.NoError(s.handler.Categories(c))

	s.Equal(http.StatusOK, rec.Code)
	var got dto.CategoryBreakdownResponse
	decodeData(s.T(), rec, &got)
	s.Equal("expense", got.Type)
	s.Require().Len(got.Categories, 1)
	s.Equal("food", got.Categories[0].Category)
}

func (s *SummaryHandlerTestSuite) TestCategories_InvalidType() {
	s.summaryService.EXPECT().CategoryBreakdown(gomock.Any(), s.userID, gomock.Any(), "bogus").
		Return(nil, models.ErrInvalidTransactionType)

	c, rec := s.monthContext(http.MethodGet, "/api/summary/2024-03/categories?type=bogus", "2024-03")
	s.NoError(s.handler.Categories(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("TRANSACTION_003", decodeError(s.T(), rec).Code)
}

func (s *SummaryHandlerTestSuite) TestListYear() {
	months := make([]models.MonthlySummary, 0, 12)
	for _, ym := range models.MonthsOfYear(2024) {
		months = append(months, *models.EmptyMonthlySummary(s.userID, ym))
	}
	months[2] = *s.march()
	s.summaryService.EXPECT().ListYear(gomock.Any(), s.userID, 2024).Return(months, nil)

	c, rec := newContext(s.e, http.MethodGet, "/api/summary?year=2024", nil)
	authenticate(c, s.userID)
	s.NoError(s.handler.ListYear(c))

	s.Equal(http.StatusOK, rec.Code)
	var got dto.YearSummaryResponse
	decodeData(s.T(), rec, &got)
	s.Equal(2024, got.Year)
	s.Len(got.Months, 12)
	s.True(decimal.NewFromInt(3000000).Equal(got.IncomeTotal))
	s.Nil(got.Months[0].UpdatedAt)
}

func (s *SummaryHandlerTestSuite) TestListYear_DefaultsToCurrentYear() {
	s.summaryService.EXPECT().ListYear(gomock.Any(), s.userID, 2024).Return(nil, nil)

	c, rec := newContext(s.e, http.MethodGet, "/api/summary", nil)
	authenticate(c, s.userID)
	s.NoError(s.handler.ListYear(c))

	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerTestSuite) TestListYear_InvalidYear() {
	for _, raw := range []string{"24", "twenty", "20245"} {
		c, rec := newContext(s.e, http.MethodGet, "/api/summary?year="+raw, nil)
		authenticate(c, s.userID)
		s.NoError(s.handler.ListYear(c))
		s.Equal(http.StatusBadRequest, rec.Code, raw)
		s.Equal("SUMMARY_002", decodeError(s.T(), rec).Code)
	}
}
