package models

import "gorm.io/gorm"

// AllModels returns all persisted models for migration
func AllModels() []interface{} {
	return []interface{}{
		&VoteCount{},
		&VoteReceipt{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
