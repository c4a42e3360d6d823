package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pm-dashboard/internal/database"
	"pm-dashboard/internal/models"
)

// NewDB: SQLite с миграциями во временной папке теста
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Logger() *zap.Logger {
	return zap.NewNop()
}

// CreateUser: учётка + профиль
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, approved bool) (*models.Identity, *models.Profile) {
	t.Helper()

	identity := &models.Identity{Email: email, PasswordHash: "x", EmailConfirmed: true}
	if err := db.Create(identity).Error; err != nil {
		t.Fatalf("failed to create identity: %v", err)
	}
	profile := &models.Profile{ID: identity.ID, Email: email, Role: role, IsApproved: approved}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return identity, profile
}

func Ptr[T any](v T) *T { return &v }
