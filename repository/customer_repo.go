package repository

import (
	"errors"

	"gorm.io/gorm"

	"tutorhub-backend/models"
)

// CustomerRepository is the customer directory: phone-keyed records with an
// optional chat-platform identity and lifetime usage counters.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindByPhone returns nil, nil when no record exists.
func (r *CustomerRepository) FindByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("phone = ?", phone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByExternalID returns nil, nil when no record exists.
func (r *CustomerRepository) FindByExternalID(externalUserID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("external_user_id = ?", externalUserID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Register creates or links a customer from a chat registration message.
// An existing phone record gets the external identity bound to it; an
// identity already bound to a different phone fails with ErrIdentityBound.
func (r *CustomerRepository) Register(name, phone, externalUserID string) (*models.Customer, error) {
	bound, err := r.FindByExternalID(externalUserID)
	if err != nil {
		return nil, err
	}
	if bound != nil && bound.Phone != phone {
		return nil, ErrIdentityBound
	}
	if bound != nil {
		return bound, nil
	}

	existing, err := r.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.ExternalUserID != nil && *existing.ExternalUserID != externalUserID {
			return nil, ErrIdentityBound
		}
		if err := r.db.Model(existing).
			Update("external_user_id", externalUserID).Error; err != nil {
			return nil, err
		}
		existing.ExternalUserID = &externalUserID
		return existing, nil
	}

	customer := models.Customer{
		Name:           name,
		Phone:          phone,
		ExternalUserID: &externalUserID,
	}
	if err := r.db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListBySpent returns all customers, biggest lifetime spenders first.
func (r *CustomerRepository) ListBySpent() ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Order("total_spent DESC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Count(&count).Error
	return count, err
}
