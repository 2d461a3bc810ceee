package database

import (
	"fmt"

	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.Store.Database.DSNValue(),
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(resolveLogLevel(cfg)),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	return sqlDB.Close()
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.Env == "debug" {
		return logger.Info
	}
	return logger.Warn
}

// Migrate runs GORM auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.DocumentModel{},
		&models.AssetModel{},
		&models.SlugTrackerModel{},
	)
}
