package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// Migrate creates or updates the essay tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.EssayPrompt{},
		&models.Essay{},
		&models.EssayVersion{},
		&models.AIAnalysisResult{},
		&models.CompletionEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate essay tables: %w", err)
	}
	return nil
}
