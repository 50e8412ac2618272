// Package dbtest opens throwaway databases for tests in other packages.
package dbtest

import (
	"testing"
	"time"

	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
)

// New returns a migrated in-memory sqlite store closed at test cleanup
func New(tb testing.TB) *database.GormDB {
	tb.Helper()
	gdb, err := database.Open(config.DatabaseConfig{Type: "sqlite", URL: ":memory:"}, "silent")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.InitSchema(); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = gdb.Close() })
	return gdb
}

// FixedClock returns a clock frozen at the given date
func FixedClock(year int, month time.Month, day int) func() time.Time {
	at := time.Date(year, month, day, 15, 4, 5, 0, time.UTC)
	return func() time.Time { return at }
}
