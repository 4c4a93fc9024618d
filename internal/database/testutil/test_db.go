// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/database"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type schemaLevel int

const (
	schemaNone schemaLevel = iota
	schemaMigrated
	schemaSeeded
)

// TestDBOption selects how far the schema is prepared.
type TestDBOption func(*schemaLevel)

// WithAutoMigrate creates the tables without inserting any rows.
func WithAutoMigrate() TestDBOption {
	return func(level *schemaLevel) {
		*level = max(*level, schemaMigrated)
	}
}

// WithSeedData creates the tables and stores the default settings record.
func WithSeedData() TestDBOption {
	return func(level *schemaLevel) {
		*level = schemaSeeded
	}
}

// MustOpenTestDB returns an in-memory SQLite database private to t. It is
// closed when the test ends.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := schemaNone
	for _, opt := range opts {
		opt(&level)
	}

	name := unsafeNameChars.ReplaceAllString(t.Name(), "_")
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s-%s?mode=memory&cache=shared&_foreign_keys=1", name, uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	switch level {
	case schemaSeeded:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case schemaMigrated:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}
