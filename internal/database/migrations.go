package database

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/models"
	"github.com/vwmedia/siteutil/internal/settings"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Option{},
		&models.Post{},
	)
}

// SeedData writes the default settings record unless one is already stored.
func SeedData(db *gorm.DB) error {
	defaults, err := json.Marshal(settings.Default())
	if err != nil {
		return fmt.Errorf("encode default settings: %w", err)
	}
	_, err = AddOption(context.Background(), db, settings.OptionName, defaults)
	return err
}
