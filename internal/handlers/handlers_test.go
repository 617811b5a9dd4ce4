package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func recordError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandlers(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)
	h.handleServiceError(c, err)
	return w
}

func TestErrorMappingValidation(t *testing.T) {
	w := recordError(t, apperrors.NewValidation("seat_ids must not be empty"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "seat_ids must not be empty")
}

func TestErrorMappingNotFound(t *testing.T) {
	w := recordError(t, apperrors.NewNotFound("show"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "show not found")
}

func TestErrorMappingConflictBody(t *testing.T) {
	w := recordError(t, &apperrors.ConflictError{
		UnavailableSeatIDs: []string{"seat-a", "seat-b"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body models.ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"seat-a", "seat-b"}, body.UnavailableSeatIDs)
	assert.Zero(t, body.FailedCount)
}

func TestErrorMappingConflictFailedCount(t *testing.T) {
	w := recordError(t, &apperrors.ConflictError{FailedCount: 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body models.ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.FailedCount)
	assert.Empty(t, body.UnavailableSeatIDs)
}

func TestErrorMappingUnauthorized(t *testing.T) {
	w := recordError(t, apperrors.ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMappingWrappedErrorsUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("failed to reserve: %w", &apperrors.ConflictError{FailedCount: 1})
	w := recordError(t, wrapped)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestErrorMappingInternalIsOpaque(t *testing.T) {
	w := recordError(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestReserveSeatsRejectsMalformedJSON(t *testing.T) {
	h := NewHandlers(nil, nil)
	router := gin.New()
	router.POST("/api/reservations", h.ReserveSeats)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateShowRequiresTitle(t *testing.T) {
	h := NewHandlers(nil, nil)
	router := gin.New()
	router.POST("/api/shows", h.CreateShow)

	req := httptest.NewRequest(http.MethodPost, "/api/shows", strings.NewReader(`{"datetime_start":"2026-09-12T19:30:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetShowRejectsNonNumericID(t *testing.T) {
	h := NewHandlers(nil, nil)
	router := gin.New()
	router.GET("/api/shows/:id", h.GetShow)

	req := httptest.NewRequest(http.MethodGet, "/api/shows/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
