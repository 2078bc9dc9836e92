package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
// Order matters: referenced tables come first.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Step{},
		&models.Rating{},
		&models.CookbookEntry{},
		&models.AccessToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Database schema migrated")
	return nil
}
