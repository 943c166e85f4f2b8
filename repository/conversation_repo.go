package repository

import (
	"gorm.io/gorm"

	"tutorhub-backend/models"
)

// ConversationRepository stores the chat exchange log shown to admins.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

// ListRecent returns the newest conversations, capped at limit.
func (r *ConversationRepository) ListRecent(limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Order("created_at DESC").Limit(limit).Find(&convs).Error
	return convs, err
}

func (r *ConversationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Conversation{}).Count(&count).Error
	return count, err
}
