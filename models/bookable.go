package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookable is a reservable resource: a tutor or a study room.
type Bookable struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Title      string    `json:"title"`
	Specialty  string    `json:"specialty"`
	Bio        string    `gorm:"type:text" json:"bio"`
	HourlyRate int       `gorm:"not null" json:"hourly_rate"`
	Capacity   int       `gorm:"default:1" json:"capacity"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	PhotoURL   string    `json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (b *Bookable) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
