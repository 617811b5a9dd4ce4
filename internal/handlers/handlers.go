package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/cache"
	"stagedoor/internal/models"
	"stagedoor/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers содержит все HTTP обработчики приложения
type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// handleServiceError maps domain errors to HTTP responses. Anything not in
// the taxonomy is a 500 with a generic body; details go to the log only.
func (h *Handlers) handleServiceError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var notFoundErr *apperrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, models.ConflictResponse{
			Error:              conflictErr.Error(),
			UnavailableSeatIDs: conflictErr.UnavailableSeatIDs,
			FailedCount:        conflictErr.FailedCount,
		})
		return
	}

	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
