package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// MigrationStatus is the schema version recorded by golang-migrate.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// MigrationRunner applies the embedded schema migrations and optional seed files.
type MigrationRunner struct {
	db        *sql.DB
	seedsPath string
	logger    *slog.Logger
}

func NewMigrationRunner(db *sql.DB, seedsPath string, logger *slog.Logger) *MigrationRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationRunner{
		db:        db,
		seedsPath: seedsPath,
		logger:    logger,
	}
}

// OpenSQL opens a plain lib/pq connection. golang-migrate needs its own *sql.DB.
func OpenSQL(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	return db, nil
}

// WaitForDatabase pings until the database answers, maxRetries times at most.
func (mr *MigrationRunner) WaitForDatabase(ctx context.Context) error {
	mr.logger.Info("waiting for database to be ready")

	for i := 0; i < maxRetries; i++ {
		err := mr.db.PingContext(ctx)
		if err == nil {
			mr.logger.Info("database is ready")
			return nil
		}

		mr.logger.Warn("database not ready", "attempt", i+1, "max_attempts", maxRetries, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

func (mr *MigrationRunner) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations. A dirty version is forced before retrying.
func (mr *MigrationRunner) Up() error {
	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		mr.logger.Warn("database is in dirty state, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mr.logger.Info("no new migrations to apply", "version", version)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	mr.logger.Info("applied migrations", "from_version", version, "version", newVersion)
	return nil
}

// Down rolls back the given number of migrations.
func (mr *MigrationRunner) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}

	mr.logger.Info("rolled back migrations", "steps", steps)
	return nil
}

func (mr *MigrationRunner) Status() (MigrationStatus, error) {
	m, err := mr.newMigrate()
	if err != nil {
		return MigrationStatus{}, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}

// LoadSeeds executes every *.sql file in the seeds directory in name order.
// A failing file is logged and skipped.
func (mr *MigrationRunner) LoadSeeds(ctx context.Context) error {
	if _, err := os.Stat(mr.seedsPath); os.IsNotExist(err) {
		mr.logger.Info("seeds directory not found, skipping seed data", "path", mr.seedsPath)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.seedsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to find seed files: %w", err)
	}

	if len(files) == 0 {
		mr.logger.Info("no seed files found", "path", mr.seedsPath)
		return nil
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.ExecContext(ctx, string(content)); err != nil {
			mr.logger.Warn("failed to execute seed file", "file", filepath.Base(file), "error", err)
			continue
		}

		mr.logger.Info("executed seed file", "file", filepath.Base(file))
	}

	return nil
}

// RunMigrationsIfEnabled is the server start hook. It does nothing unless AUTO_MIGRATE is on.
func RunMigrationsIfEnabled(ctx context.Context, db *sql.DB, cfg *config.DatabaseConfig, logger *slog.Logger) error {
	if !cfg.AutoMigrate {
		logger.Info("auto-migration disabled")
		return nil
	}

	runner := NewMigrationRunner(db, cfg.SeedsPath, logger)

	if err := runner.WaitForDatabase(ctx); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}

	if err := runner.Up(); err != nil {
		return fmt.Errorf("migration execution failed: %w", err)
	}

	if cfg.SeedDatabase {
		if err := runner.LoadSeeds(ctx); err != nil {
			logger.Warn("seed data loading failed", "error", err)
		}
	}

	return nil
}
