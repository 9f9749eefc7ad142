// Package testutil provides utilities for testing.
package testutil

import (
	"path/filepath"
	"testing"

	"mes-planner/internal/config"
	"mes-planner/internal/database"

	"gorm.io/gorm"
)

// NewTestDB creates a migrated sqlite database in a temporary directory.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(config.DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// AssertRowCount asserts the row count for a model's table.
func AssertRowCount(t *testing.T, db *gorm.DB, model any, expected int64) {
	t.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}

	if count != expected {
		t.Errorf("expected %d rows, got %d", expected, count)
	}
}
