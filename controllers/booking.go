// controllers/booking.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/services"
	"tutorhub-backend/utils"
)

// BookingController serves the public browsing and booking endpoints.
type BookingController struct {
	Ledger    *services.Ledger
	Bookables *repository.BookableRepository
}

// CreateBookingInput is the POST /api/book body. EndTime may be omitted for
// fixed-grid bookings; it then defaults to one slot after StartTime.
type CreateBookingInput struct {
	BookableID uuid.UUID `json:"bookable_id" binding:"required"`
	Date       string    `json:"date" binding:"required"`
	StartTime  string    `json:"start_time" binding:"required"`
	EndTime    string    `json:"end_time"`
	Name       string    `json:"name" binding:"required"`
	Phone      string    `json:"phone" binding:"required"`
	Note       string    `json:"note"`
}

// ListBookables returns the active bookables in insertion order.
func (ctl *BookingController) ListBookables(c *gin.Context) {
	bookables, err := ctl.Bookables.ListActive()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookables")
		return
	}
	c.JSON(http.StatusOK, bookables)
}

// GetAvailability returns the free and taken fixed-grid labels for one
// bookable and date.
func (ctl *BookingController) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid bookable ID format")
		return
	}
	date := c.Query("date")
	if date == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing date")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format")
		return
	}

	available, booked, err := ctl.Ledger.AvailableSlots(id, date)
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Bookable not found")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available_times": available,
		"booked_times":    booked,
	})
}

// CreateBooking creates a web-sourced confirmed booking.
func (ctl *BookingController) CreateBooking(c *gin.Context) {
	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, err := ctl.Ledger.CreateBooking(services.CreateRequest{
		BookableID: input.BookableID,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Name:       input.Name,
		Phone:      input.Phone,
		Note:       input.Note,
		Source:     models.SourceWeb,
	})
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Bookable not found")
		return
	case errors.Is(err, services.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "slot_conflict", "message": "此時段已被預約"})
		return
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": booking})
}
