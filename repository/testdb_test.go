package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorhub-backend/models"
)

// newTestDB opens a private in-memory database, capped at one connection so
// every statement sees the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Bookable{},
		&models.Booking{},
		&models.Customer{},
		&models.Conversation{},
		&models.NotificationLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestBookable(t *testing.T, db *gorm.DB, name string, rate int) *models.Bookable {
	t.Helper()
	bookable := &models.Bookable{Name: name, HourlyRate: rate, Capacity: 1, IsActive: true}
	if err := db.Create(bookable).Error; err != nil {
		t.Fatalf("failed to create bookable: %v", err)
	}
	return bookable
}
