package database

import (
	"fmt"

	"subtracker/internal/logger"
	"subtracker/internal/models"

	"gorm.io/gorm"
)

// SeedCategories inserts any default category whose (name, type) pair is missing.
// Existing rows are left untouched. It returns the number of categories added.
func SeedCategories(db *gorm.DB) (int, error) {
	added := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Category
		if err := tx.Select("name", "type").Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}

		present := make(map[string]bool, len(existing))
		for _, c := range existing {
			present[seedKey(c)] = true
		}

		for _, c := range models.DefaultCategories() {
			if present[seedKey(c)] {
				continue
			}
			category := c
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
			}
			logger.Get().Debugw("Added default category", "name", c.Name, "type", c.Type)
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		logger.Get().Infof("Seeded %d default categories", added)
	}
	return added, nil
}

func seedKey(c models.Category) string {
	return string(c.Type) + "/" + c.Name
}
