package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables of every schema and the settings table.
func Migrate(db *gorm.DB) error {
	for _, s := range Schemas() {
		if err := db.AutoMigrate(s.Models()...); err != nil {
			return fmt.Errorf("migrate %s schema: %w", s.Name, err)
		}
	}
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return fmt.Errorf("migrate settings: %w", err)
	}
	return nil
}
