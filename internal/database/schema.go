package database

import (
	"subtracker/internal/models"

	"gorm.io/gorm"
)

// Models lists every table in foreign-key dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AuthToken{},
		&models.BankAccount{},
		&models.Category{},
		&models.Transaction{},
	}
}

// AutoMigrate creates the schema from the gorm models. It is used for SQLite,
// where the PostgreSQL migrations do not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
