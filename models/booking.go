package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking status values. Confirmed is the initial state; Cancelled is
// terminal. Completed is set by the scheduler once the interval has passed.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking source values.
const (
	SourceWeb  = "web"
	SourceChat = "chat"
)

// Booking is a reservation of one Bookable for one time interval on one date.
// Date is YYYY-MM-DD, StartTime/EndTime are HH:MM half-open: [start, end).
type Booking struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingNumber  string    `gorm:"uniqueIndex;not null" json:"booking_number"`
	BookableID     uuid.UUID `gorm:"type:uuid;index:idx_bookable_date,priority:1;not null" json:"bookable_id"`
	CustomerName   string    `gorm:"not null" json:"customer_name"`
	CustomerPhone  string    `gorm:"not null" json:"customer_phone"`
	ExternalUserID *string   `gorm:"index" json:"external_user_id,omitempty"`
	Date           string    `gorm:"size:10;index:idx_bookable_date,priority:2;not null" json:"date"`
	StartTime      string    `gorm:"size:5;not null" json:"start_time"`
	EndTime        string    `gorm:"size:5;not null" json:"end_time"`
	Hours          int       `gorm:"default:1" json:"hours"`
	TotalPrice     int       `gorm:"default:0" json:"total_price"`
	Status         string    `gorm:"size:20;default:'confirmed';index" json:"status"`
	Source         string    `gorm:"size:20;default:'web'" json:"source"`
	Note           string    `gorm:"type:text" json:"note"`
	CreatedAt      time.Time `json:"created_at"`

	Bookable     *Bookable `gorm:"foreignKey:BookableID" json:"-"`
	BookableName string    `gorm:"-" json:"bookable_name"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

func (b *Booking) AfterFind(tx *gorm.DB) (err error) {
	if b.Bookable != nil {
		b.BookableName = b.Bookable.Name
	}
	return
}
