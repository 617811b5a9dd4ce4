package handlers

import (
	"net/http"
	"strconv"

	"stagedoor/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateShow обрабатывает POST /api/shows
func (h *Handlers) CreateShow(c *gin.Context) {
	var req models.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Shows.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListShows обрабатывает GET /api/shows
func (h *Handlers) ListShows(c *gin.Context) {
	query := c.Query("query")
	date := c.Query("date")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	ctx := c.Request.Context()
	cacheable := query == "" && date == ""

	// Plain catalog pages are served from the cache when possible.
	if cacheable && h.valkeyClient != nil {
		if raw, err := h.valkeyClient.GetShowsListRaw(ctx, page, pageSize); err == nil && raw != nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}
	}

	resp, err := h.services.Shows.List(ctx, query, date, page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if cacheable && h.valkeyClient != nil {
		h.valkeyClient.SetShowsList(ctx, page, pageSize, resp)
	}

	c.JSON(http.StatusOK, resp)
}

// GetShow обрабатывает GET /api/shows/:id
func (h *Handlers) GetShow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid show id"})
		return
	}

	show, err := h.services.Shows.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}

// ListSeats обрабатывает GET /api/shows/:id/seats
func (h *Handlers) ListSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid show id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "100"))

	var section, status *string
	if v := c.Query("section"); v != "" {
		section = &v
	}
	if v := c.Query("status"); v != "" {
		status = &v
	}

	resp, err := h.services.Shows.ListSeats(c.Request.Context(), id, page, pageSize, section, status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
