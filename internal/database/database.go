package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/config"
	"budgetbook/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// AutoMigrate keeps the schema in step with the models when SQL migrations are not run.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.BlacklistedToken{},
		&models.Transaction{},
		&models.MonthlySummary{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CleanupExpiredTokens removes refresh and blacklist rows that can no longer matter.
func (db *DB) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now()
	tx := db.DB.WithContext(ctx)

	refresh := tx.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if refresh.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired refresh tokens: %w", refresh.Error)
	}

	blacklisted := tx.Where("expires_at < ?", now).Delete(&models.BlacklistedToken{})
	if blacklisted.Error != nil {
		return refresh.RowsAffected, fmt.Errorf("failed to cleanup expired blacklisted tokens: %w", blacklisted.Error)
	}

	return refresh.RowsAffected + blacklisted.RowsAffected, nil
}

// Initialize connects, then applies SQL migrations over a separate lib/pq
// connection when enabled. AutoMigrate is the fallback when migrations fail.
func Initialize(ctx context.Context, cfg *config.Config, log *slog.Logger) (*DB, error) {
	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}

	db, err := New(&cfg.Database, level)
	if err != nil {
		return nil, err
	}

	if err := migrateWithFallback(ctx, db, cfg, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database initialized", "host", cfg.Database.Host, "name", cfg.Database.Name)
	return db, nil
}

func migrateWithFallback(ctx context.Context, db *DB, cfg *config.Config, log *slog.Logger) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}

	sqlDB, err := OpenSQL(&cfg.Database)
	if err == nil {
		defer sqlDB.Close()
		err = RunMigrationsIfEnabled(ctx, sqlDB, &cfg.Database, log)
	}
	if err == nil {
		return nil
	}

	log.Warn("migration runner failed, falling back to gorm AutoMigrate", "error", err)
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
