// Package dbtest opens throwaway sqlite databases with the full schema for
// tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated database that is removed when the test ends.
// Writes are serialized through a single connection, as sqlite allows only
// one writer.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser stores an active user with the given account name.
func CreateUser(t testing.TB, db *gorm.DB, name string) models.User {
	t.Helper()

	u := models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		AccountName:  name,
		ImageKey:     models.DefaultImageKey,
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}
