package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pm-dashboard/internal/models"
)

// SeedAdmin создаёт администратора, если в системе ещё нет ни одного.
// Без пароля в конфиге ничего не делаем.
func SeedAdmin(db *gorm.DB, email, password string, logger *zap.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		logger.Info("admin seed skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	var count int64
	if err := db.Model(&models.Profile{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin profile: %w", err)
	}
	if count > 0 {
		// админ уже есть
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		identity := models.Identity{
			Email:          email,
			PasswordHash:   string(hash),
			EmailConfirmed: true,
		}
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}
		profile := models.Profile{
			ID:         identity.ID,
			Email:      email,
			Role:       models.RoleAdmin,
			IsApproved: true,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("created default admin", zap.String("email", email))
	return nil
}
