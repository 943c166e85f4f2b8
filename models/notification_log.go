package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records one outbound notification attempt per channel.
type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID    uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	Event        string    `gorm:"size:20" json:"event"`   // confirmed, cancelled
	Channel      string    `gorm:"size:20" json:"channel"` // line, sms, email
	Recipient    string    `json:"recipient"`
	Status       string    `gorm:"size:20" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
