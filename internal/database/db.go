package database

import (
	"log"

	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connection established")

	log.Println("Running Migrations...")
	if err := Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}
	return db
}

// Migrate creates or updates the schema for every persisted model. Shared
// with the test database setup so tests run against the same schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Guest{},
		&models.Company{},
		&models.Application{},
		&models.Deadline{},
		&models.Task{},
		&models.EntrySheet{},
		&models.EntrySheetReview{},
		&models.Subscription{},
	)
}
