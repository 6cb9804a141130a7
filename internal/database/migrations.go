package database

import (
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Storages migrate before folders and folders before products so the
// foreign keys can be created.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Storage{},
		&models.Folder{},
		&models.Product{},
		&models.AppSetting{},
	)
}
