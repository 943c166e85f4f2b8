package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorhub-backend/config"
	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/utils"
)

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

type ledgerFixture struct {
	db        *gorm.DB
	ledger    *Ledger
	bookings  *repository.BookingRepository
	bookables *repository.BookableRepository
	customers *repository.CustomerRepository
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := newTestDB(t)
	f := &ledgerFixture{
		db:        db,
		bookings:  repository.NewBookingRepository(db),
		bookables: repository.NewBookableRepository(db),
		customers: repository.NewCustomerRepository(db),
	}
	cfg := &config.Config{GridStartHour: 9, GridEndHour: 21, SlotMinutes: 60}
	f.ledger = NewLedger(f.bookings, f.bookables, f.customers, nil, cfg)
	return f
}

func (f *ledgerFixture) newBookable(t *testing.T, name string, rate int, active bool) *models.Bookable {
	t.Helper()
	bookable := &models.Bookable{Name: name, HourlyRate: rate, Capacity: 1, IsActive: active}
	if err := f.bookables.Create(bookable); err != nil {
		t.Fatalf("failed to create bookable: %v", err)
	}
	return bookable
}

// futureDate returns a date comfortably past the past-date guard.
func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(utils.DateLayout)
}
