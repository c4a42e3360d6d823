package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pm-dashboard/internal/models"
)

func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logger.Info("connecting to DB", zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			logger.Info("connected to DB successfully")
			return db, nil
		}

		logger.Warn("failed to connect to DB", zap.Error(err))
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
}

// Migrate создаёт/обновляет все таблицы приложения.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Identity{},
		&models.Profile{},
		&models.AccessRequest{},
		&models.Project{},
		&models.ProductionOrder{},
		&models.Service{},
		&models.HistoryEntry{},
		&models.ImportLog{},
		&models.AppSetting{},
		&models.AppSettingsLog{},
		&models.UserActionLog{},
		&models.UserTableSettings{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
