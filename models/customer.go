package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is identified by phone, with an optional chat-platform identity.
// The Total* counters are lifetime gross usage: they grow on every confirmed
// booking and are never reconciled on cancellation.
type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Phone          string    `gorm:"uniqueIndex;not null" json:"phone"`
	ExternalUserID *string   `gorm:"uniqueIndex" json:"external_user_id,omitempty"`
	Email          string    `json:"email"`
	TotalBookings  int       `gorm:"default:0" json:"total_bookings"`
	TotalHours     int       `gorm:"default:0" json:"total_hours"`
	TotalSpent     int       `gorm:"default:0" json:"total_spent"`
	CreatedAt      time.Time `json:"created_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
