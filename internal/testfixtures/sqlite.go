package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence/sqlite"
)

// NewSQLiteStorage opens a migrated storage backed by a temporary file.
// The storage is closed through tb.Cleanup.
func NewSQLiteStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "portal.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}
