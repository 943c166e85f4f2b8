package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation records one handled chat exchange for the admin log.
type Conversation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ExternalUserID string     `gorm:"index;not null" json:"external_user_id"`
	UserMessage    string     `gorm:"type:text;not null" json:"user_message"`
	BotResponse    string     `gorm:"type:text;not null" json:"bot_response"`
	Intent         string     `gorm:"size:50" json:"intent"` // booking, query, cancel, other
	BookingID      *uuid.UUID `gorm:"type:uuid" json:"booking_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
