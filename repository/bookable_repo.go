package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorhub-backend/models"
)

// BookableRepository provides access to the bookable registry.
type BookableRepository struct {
	db *gorm.DB
}

func NewBookableRepository(db *gorm.DB) *BookableRepository {
	return &BookableRepository{db: db}
}

// ListActive returns active bookables in insertion order.
func (r *BookableRepository) ListActive() ([]models.Bookable, error) {
	var bookables []models.Bookable
	err := r.db.Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&bookables).Error
	return bookables, err
}

// ListAll returns every bookable, active or not, for the admin surface.
func (r *BookableRepository) ListAll() ([]models.Bookable, error) {
	var bookables []models.Bookable
	err := r.db.Order("created_at ASC").Find(&bookables).Error
	return bookables, err
}

func (r *BookableRepository) Get(id uuid.UUID) (*models.Bookable, error) {
	var bookable models.Bookable
	if err := r.db.First(&bookable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bookable, nil
}

func (r *BookableRepository) Create(bookable *models.Bookable) error {
	return r.db.Create(bookable).Error
}

// Update applies a partial field update and returns the refreshed record.
func (r *BookableRepository) Update(id uuid.UUID, fields map[string]interface{}) (*models.Bookable, error) {
	res := r.db.Model(&models.Bookable{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(id)
}
