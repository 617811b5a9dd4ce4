package handlers

import (
	"net/http"

	"stagedoor/internal/models"

	"github.com/gin-gonic/gin"
)

// ConfirmBooking обрабатывает POST /api/bookings/confirm
func (h *Handlers) ConfirmBooking(c *gin.Context) {
	var req models.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Bookings.Confirm(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListBookings обрабатывает GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	resp, err := h.services.Bookings.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
