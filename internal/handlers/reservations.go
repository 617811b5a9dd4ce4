package handlers

import (
	"net/http"

	"stagedoor/internal/models"

	"github.com/gin-gonic/gin"
)

// ReserveSeats обрабатывает POST /api/reservations
func (h *Handlers) ReserveSeats(c *gin.Context) {
	var req models.ReserveSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Reservations.Reserve(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
