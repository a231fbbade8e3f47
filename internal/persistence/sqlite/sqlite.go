package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/example/recruitment-portal/internal/persistence"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage implements every persistence repository on a single SQLite database.
type Storage struct {
	db    *sql.DB
	retry retryConfig
}

var _ interface {
	persistence.UserRepository
	persistence.SessionRepository
	persistence.ApplicationRepository
	persistence.DocumentRepository
	persistence.MessageRepository
	persistence.EditRequestRepository
	persistence.ScreeningRepository
	persistence.PositionRepository
	persistence.InterviewRepository
	persistence.ActivityRepository
	persistence.SettingsRepository
	persistence.StatisticsRepository
} = (*Storage)(nil)

// Open connects to the SQLite database identified by dsn.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Storage{db: db, retry: defaultRetryConfig()}, nil
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies every pending embedded migration.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer source.Close()

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	// m.Close would close the shared *sql.DB through the driver.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
