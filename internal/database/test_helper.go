package database

import (
	"fmt"
	"testing"
	"time"

	"budgetbook/internal/config"
	"budgetbook/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
func SetupTestDB(t testing.TB) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	// one connection keeps every query on the same in-memory database
	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = testDB.Close()
	})

	return testDB
}

func CreateTestUser(t testing.TB, db *DB, email string) *models.User {
	t.Helper()

	if email == "" {
		email = gofakeit.Email()
	}

	user := &models.User{
		Email:        email,
		PasswordHash: "hashed_password",
		DisplayName:  gofakeit.FirstName(),
		Role:         models.RoleUser,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestTransaction inserts a transaction dated on the given YYYY-MM-DD day.
func CreateTestTransaction(t testing.TB, db *DB, userID uuid.UUID, date, txType string, amount int64) *models.Transaction {
	t.Helper()

	day, err := models.ParseDate(date)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", date, err)
	}

	tx := &models.Transaction{
		UserID:      userID,
		Date:        day,
		Amount:      decimal.NewFromInt(amount),
		Type:        txType,
		Category:    gofakeit.RandomString([]string{"food", "rent", "salary", "transport", "deposit"}),
		Description: gofakeit.Sentence(3),
	}

	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return tx
}

func CleanupTestDB(t testing.TB, db *DB) {
	t.Helper()

	tables := []string{
		"monthly_summary",
		"transactions",
		"blacklisted_tokens",
		"refresh_tokens",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
