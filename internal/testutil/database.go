// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"strings"
	"testing"

	"subtracker/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database private to t, with foreign
// keys enforced, the schema migrated and the default categories seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenTestDB(t)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if _, err := database.SeedCategories(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return db
}

// OpenTestDB opens an empty in-memory SQLite database private to t.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := database.SQLiteDSN("file:" + name + "?mode=memory&cache=shared")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	// Each connection to a shared-cache memory database must stay alive for
	// its data to survive, and SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
