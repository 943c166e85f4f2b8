// controllers/bookable.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/utils"
)

// BookableController serves the admin bookable registry.
type BookableController struct {
	Bookables *repository.BookableRepository
}

type CreateBookableInput struct {
	Name       string `json:"name" binding:"required"`
	Title      string `json:"title"`
	Specialty  string `json:"specialty"`
	Bio        string `json:"bio"`
	HourlyRate int    `json:"hourly_rate" binding:"required,min=1"`
	Capacity   int    `json:"capacity" binding:"omitempty,min=1"`
	PhotoURL   string `json:"photo_url"`
}

type UpdateBookableInput struct {
	Name       *string `json:"name"`
	Title      *string `json:"title"`
	Specialty  *string `json:"specialty"`
	Bio        *string `json:"bio"`
	HourlyRate *int    `json:"hourly_rate" binding:"omitempty,min=1"`
	Capacity   *int    `json:"capacity" binding:"omitempty,min=1"`
	PhotoURL   *string `json:"photo_url"`
	IsActive   *bool   `json:"is_active"`
}

// ListBookables returns every bookable, inactive ones included.
func (ctl *BookableController) ListBookables(c *gin.Context) {
	bookables, err := ctl.Bookables.ListAll()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookables")
		return
	}
	c.JSON(http.StatusOK, bookables)
}

func (ctl *BookableController) CreateBookable(c *gin.Context) {
	var input CreateBookableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	capacity := input.Capacity
	if capacity == 0 {
		capacity = 1
	}

	bookable := models.Bookable{
		Name:       input.Name,
		Title:      input.Title,
		Specialty:  input.Specialty,
		Bio:        input.Bio,
		HourlyRate: input.HourlyRate,
		Capacity:   capacity,
		IsActive:   true,
		PhotoURL:   input.PhotoURL,
	}
	if err := ctl.Bookables.Create(&bookable); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create bookable")
		return
	}
	c.JSON(http.StatusCreated, bookable)
}

// UpdateBookable applies a partial update. Toggling is_active off removes
// the bookable from listings and new bookings without touching existing
// bookings that reference it.
func (ctl *BookableController) UpdateBookable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid bookable ID format")
		return
	}

	var input UpdateBookableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Specialty != nil {
		fields["specialty"] = *input.Specialty
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.HourlyRate != nil {
		fields["hourly_rate"] = *input.HourlyRate
	}
	if input.Capacity != nil {
		fields["capacity"] = *input.Capacity
	}
	if input.PhotoURL != nil {
		fields["photo_url"] = *input.PhotoURL
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	bookable, err := ctl.Bookables.Update(id, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Bookable not found")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update bookable")
		return
	}
	c.JSON(http.StatusOK, bookable)
}
