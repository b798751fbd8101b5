package repositories

import (
	"context"
	"testing"

	"budgetbook/internal/database"
	"budgetbook/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo TransactionRepositoryInterface
	user *models.User
	ctx  context.Context
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "")
	s.ctx = context.Background()
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionRepositorySuite) newTransaction(date string, txType, category string, amount int64) *models.Transaction {
	day, err := models.ParseDate(date)
	s.Require().NoError(err)
	return &models.Transaction{
		UserID:      s.user.ID,
		Date:        day,
		Amount:      decimal.NewFromInt(amount),
		Type:        txType,
		Category:    category,
		Description: category + " " + date,
	}
}

func (s *TransactionRepositorySuite) TestCreateAndGet() {
	memo := "split with a friend"
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 50000)
	tx.Memo = &memo

	s.Require().NoError(s.repo.Create(s.ctx, tx))
	s.NotEqual(uuid.Nil, tx.ID)

	found, err := s.repo.GetByIDForUser(s.ctx, tx.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal("food", found.Category)
	s.True(decimal.NewFromInt(50000).Equal(found.Amount))
	s.Equal("2024-03-15", found.Date.UTC().Format(models.DateLayout))
	s.Require().NotNil(found.Memo)
	s.Equal(memo, *found.Memo)
	s.Nil(found.PaymentMethod)
}

func (s *TransactionRepositorySuite) TestCreate_RejectsInvalid() {
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 0)

	err := s.repo.Create(s.ctx, tx)
	s.ErrorIs(err, models.ErrInvalidAmount)
}

func (s *TransactionRepositorySuite) TestGetByIDForUser_OtherOwner() {
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 100)
	s.Require().NoError(s.repo.Create(s.ctx, tx))

	_, err := s.repo.GetByIDForUser(s.ctx, tx.ID, uuid.New())
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestUpdate() {
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 100)
	s.Require().NoError(s.repo.Create(s.ctx, tx))

	tx.Date = models.MustParseYearMonth("2024-04").FirstDay()
	tx.Amount = decimal.NewFromInt(250)
	tx.Category = "transport"
	s.Require().NoError(s.repo.Update(s.ctx, tx))

	found, err := s.repo.GetByIDForUser(s.ctx, tx.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal("2024-04", found.YearMonth().String())
	s.True(decimal.NewFromInt(250).Equal(found.Amount))
	s.Equal("transport", found.Category)
}

func (s *TransactionRepositorySuite) TestUpdate_NotFound() {
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 100)
	tx.ID = uuid.New()

	err := s.repo.Update(s.ctx, tx)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestDelete() {
	tx := s.newTransaction("2024-03-15", models.TransactionTypeExpense, "food", 100)
	s.Require().NoError(s.repo.Create(s.ctx, tx))

	s.ErrorIs(s.repo.Delete(s.ctx, tx.ID, uuid.New()), ErrTransactionNotFound)
	s.Require().NoError(s.repo.Delete(s.ctx, tx.ID, s.user.ID))
	s.ErrorIs(s.repo.Delete(s.ctx, tx.ID, s.user.ID), ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestList_Filters() {
	for _, tx := range []*models.Transaction{
		s.newTransaction("2024-02-28", models.TransactionTypeExpense, "food", 10),
		s.newTransaction("2024-03-01", models.TransactionTypeIncome, "salary", 3000),
		s.newTransaction("2024-03-10", models.TransactionTypeExpense, "food", 20),
		s.newTransaction("2024-03-20", models.TransactionTypeExpense, "rent", 500),
	} {
		s.Require().NoError(s.repo.Create(s.ctx, tx))
	}

	march := models.MustParseYearMonth("2024-03")

	all, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Len(all, 4)
	s.Equal("2024-03-20", all[0].Date.UTC().Format(models.DateLayout))

	inMarch, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Month: &march})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(inMarch, 3)

	expenses, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Month: &march, Type: models.TransactionTypeExpense})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(expenses, 2)

	food, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Category: "food"})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(food, 2)

	searched, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Search: "RENT"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(searched, 1)

	page, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Offset: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Len(page, 2)

	none, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: uuid.New()})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(none)
}

func (s *TransactionRepositorySuite) TestDistinctMonths() {
	for _, date := range []string{"2024-03-15", "2024-01-02", "2024-03-01", "2023-12-31"} {
		s.Require().NoError(s.repo.Create(s.ctx, s.newTransaction(date, models.TransactionTypeExpense, "food", 10)))
	}

	months, err := s.repo.DistinctMonths(s.ctx, s.user.ID)
	s.Require().NoError(err)

	got := make([]string, 0, len(months))
	for _, m := range months {
		got = append(got, m.String())
	}
	s.Equal([]string{"2023-12", "2024-01", "2024-03"}, got)
}
