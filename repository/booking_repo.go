package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorhub-backend/models"
)

// BookingRepository owns the single unit-of-work boundary of the system: the
// availability-check-then-insert sequence runs inside one transaction with
// row locking, backed by the unique constraint on booking_number.
type BookingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db, now: time.Now}
}

// CreateParams carries everything needed to persist one confirmed booking.
type CreateParams struct {
	Bookable       *models.Bookable
	Date           string
	StartTime      string
	EndTime        string
	Hours          int
	TotalPrice     int
	CustomerName   string
	CustomerPhone  string
	ExternalUserID *string
	Source         string
	Note           string
}

// CreateIfAvailable inserts a confirmed booking unless the interval overlaps
// an existing confirmed booking for the same bookable and date. The overlap
// re-check, number allocation, insert and customer counter update all commit
// or roll back together. A booking_number collision from a concurrent
// creation is retried once with a freshly computed ordinal.
func (r *BookingRepository) CreateIfAvailable(p CreateParams) (*models.Booking, error) {
	booking, err := r.tryCreate(p)
	if isUniqueViolation(err) {
		booking, err = r.tryCreate(p)
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateNumber
	}
	return booking, err
}

func (r *BookingRepository) tryCreate(p CreateParams) (*models.Booking, error) {
	var out *models.Booking

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Lock candidate rows so two concurrent requests cannot both
		// observe "available".
		q := tx.Model(&models.Booking{})
		if supportsRowLocking(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var existing models.Booking
		err := q.
			Where("bookable_id = ? AND date = ? AND status = ?",
				p.Bookable.ID, p.Date, models.StatusConfirmed).
			Where("start_time < ? AND end_time > ?", p.EndTime, p.StartTime).
			Take(&existing).Error
		if err == nil {
			return ErrOverlap
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := r.nextNumber(tx)
		if err != nil {
			return err
		}

		booking := &models.Booking{
			BookingNumber:  number,
			BookableID:     p.Bookable.ID,
			CustomerName:   p.CustomerName,
			CustomerPhone:  p.CustomerPhone,
			ExternalUserID: p.ExternalUserID,
			Date:           p.Date,
			StartTime:      p.StartTime,
			EndTime:        p.EndTime,
			Hours:          p.Hours,
			TotalPrice:     p.TotalPrice,
			Status:         models.StatusConfirmed,
			Source:         p.Source,
			Note:           p.Note,
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		if err := recordUsage(tx, p); err != nil {
			return err
		}

		booking.BookableName = p.Bookable.Name
		out = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// nextNumber computes "BK" + YYYYMMDD + 4-digit ordinal from the count of
// numbers already carrying today's prefix. Callers must run it inside the
// booking transaction; the unique index is the backstop for the count race.
func (r *BookingRepository) nextNumber(tx *gorm.DB) (string, error) {
	prefix := "BK" + r.now().Format("20060102")
	var count int64
	err := tx.Model(&models.Booking{}).
		Where("booking_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// recordUsage upserts the customer for this booking and increments the
// lifetime counters, all within the caller's transaction.
func recordUsage(tx *gorm.DB, p CreateParams) error {
	var customer models.Customer
	err := tx.Where("phone = ?", p.CustomerPhone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			Name:           p.CustomerName,
			Phone:          p.CustomerPhone,
			ExternalUserID: p.ExternalUserID,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else if p.ExternalUserID != nil {
		if customer.ExternalUserID == nil {
			if err := tx.Model(&customer).
				Update("external_user_id", p.ExternalUserID).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrIdentityBound
				}
				return err
			}
		} else if *customer.ExternalUserID != *p.ExternalUserID {
			return ErrIdentityBound
		}
	}

	return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"total_bookings": gorm.Expr("total_bookings + ?", 1),
			"total_hours":    gorm.Expr("total_hours + ?", p.Hours),
			"total_spent":    gorm.Expr("total_spent + ?", p.TotalPrice),
		}).Error
}

// HasOverlap is the non-locking availability read used by listings and the
// pre-check; CreateIfAvailable repeats it under lock.
func (r *BookingRepository) HasOverlap(bookableID uuid.UUID, date, start, end string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Booking{}).
		Where("bookable_id = ? AND date = ? AND status = ?",
			bookableID, date, models.StatusConfirmed).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// ConfirmedByDate returns the confirmed bookings for one bookable and date,
// ascending by start time.
func (r *BookingRepository) ConfirmedByDate(bookableID uuid.UUID, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Where("bookable_id = ? AND date = ? AND status = ?",
			bookableID, date, models.StatusConfirmed).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Preload("Bookable").First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) UpdateStatus(id uuid.UUID, status string) error {
	return r.db.Model(&models.Booking{}).Where("id = ?", id).
		Update("status", status).Error
}

// ListByExternalID returns a chat user's bookings with the given status,
// ordered by date then start time.
func (r *BookingRepository) ListByExternalID(externalUserID, status string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Bookable").
		Where("external_user_id = ? AND status = ?", externalUserID, status).
		Order("date ASC, start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListAdmin returns bookings newest first, optionally filtered by date and
// status.
func (r *BookingRepository) ListAdmin(date, status string) ([]models.Booking, error) {
	q := r.db.Preload("Bookable")
	if date != "" {
		q = q.Where("date = ?", date)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// CompletePast transitions confirmed bookings whose interval has fully
// passed to completed. Returns the number of rows transitioned.
func (r *BookingRepository) CompletePast(now time.Time) (int64, error) {
	today := now.Format("2006-01-02")
	clock := now.Format("15:04")
	res := r.db.Model(&models.Booking{}).
		Where("status = ?", models.StatusConfirmed).
		Where("date < ? OR (date = ? AND end_time <= ?)", today, today, clock).
		Update("status", models.StatusCompleted)
	return res.RowsAffected, res.Error
}

// Stats aggregates the admin dashboard numbers.
type Stats struct {
	TotalBookings int64 `json:"total_bookings"`
	TodayBookings int64 `json:"today_bookings"`
	ChatBookings  int64 `json:"chat_bookings"`
	TotalRevenue  int64 `json:"total_revenue"`
}

func (r *BookingRepository) Stats(today string) (*Stats, error) {
	var s Stats
	if err := r.db.Model(&models.Booking{}).
		Where("status = ?", models.StatusConfirmed).
		Count(&s.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).
		Where("date = ? AND status = ?", today, models.StatusConfirmed).
		Count(&s.TodayBookings).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).
		Where("source = ? AND status = ?", models.SourceChat, models.StatusConfirmed).
		Count(&s.ChatBookings).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).
		Where("status = ?", models.StatusConfirmed).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&s.TotalRevenue).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// supportsRowLocking reports whether the dialect understands SELECT ... FOR
// UPDATE. The sqlite test dialect serializes writes on its own.
func supportsRowLocking(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
