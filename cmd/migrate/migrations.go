package main

import (
	"gorm.io/gorm"

	"github.com/screencraft/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// User Management
		&models.User{},

		// Projects & Canvas
		&models.Project{},
		&models.Canvas{},

		// Generation
		&models.GenerationRun{},

		// Credits
		&models.CreditLedger{},
		&models.CreditUsage{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	models := registerModels()

	// Run AutoMigrate for all models
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	// Run custom migrations
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addGenerationRunIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addGenerationRunIndexes adds custom indexes for performance
func addGenerationRunIndexes(db *gorm.DB) error {
	// Composite index for the run listing on a project page
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_generation_runs_project_created
		ON generation_runs(project_id, created_at DESC)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	return nil
}
