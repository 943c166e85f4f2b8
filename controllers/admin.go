// controllers/admin.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutorhub-backend/config"
	"tutorhub-backend/repository"
	"tutorhub-backend/services"
	"tutorhub-backend/utils"
)

// AdminController serves the shared-secret protected admin surface.
type AdminController struct {
	Cfg           *config.Config
	Ledger        *services.Ledger
	Bookings      *repository.BookingRepository
	Customers     *repository.CustomerRepository
	Conversations *repository.ConversationRepository
}

type AdminLoginInput struct {
	Password string `json:"password" binding:"required"`
}

// Login validates the shared secret and, when a JWT secret is configured,
// returns a session token usable instead of the X-Admin-Password header.
func (ctl *AdminController) Login(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if !utils.CheckAdminPassword(ctl.Cfg, input.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid password")
		return
	}

	resp := gin.H{"success": true}
	if token, err := utils.IssueAdminToken(ctl.Cfg); err == nil {
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// GetBookings lists bookings newest first with optional date and status
// filters.
func (ctl *AdminController) GetBookings(c *gin.Context) {
	bookings, err := ctl.Bookings.ListAdmin(c.Query("date"), c.Query("status"))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CancelBooking is the privileged cancellation path: no ownership check.
func (ctl *AdminController) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	booking, err := ctl.Ledger.CancelBooking(id, "", true)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	case errors.Is(err, services.ErrNotCancellable):
		utils.RespondWithError(c, http.StatusConflict, "Booking already completed")
		return
	case err != nil:
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// GetCustomers lists customers, biggest lifetime spenders first.
func (ctl *AdminController) GetCustomers(c *gin.Context) {
	customers, err := ctl.Customers.ListBySpent()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetStats returns the dashboard aggregates.
func (ctl *AdminController) GetStats(c *gin.Context) {
	today := time.Now().Format(utils.DateLayout)
	stats, err := ctl.Bookings.Stats(today)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	customerCount, err := ctl.Customers.Count()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	conversationCount, err := ctl.Conversations.Count()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_bookings":  stats.TotalBookings,
		"today_bookings":  stats.TodayBookings,
		"chat_bookings":   stats.ChatBookings,
		"total_revenue":   stats.TotalRevenue,
		"total_customers": customerCount,
		"conversations":   conversationCount,
	})
}

// GetConversations returns the most recent chat exchanges.
func (ctl *AdminController) GetConversations(c *gin.Context) {
	convs, err := ctl.Conversations.ListRecent(100)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve conversations")
		return
	}
	c.JSON(http.StatusOK, convs)
}
