// Package photos provides REST API handlers for photo registration and
// management.
package photos

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/service/photos"
	"github.com/beautypk/photo-arena/pkg/logger"
)

const userIDHeader = "X-User-ID"

// Service interface for photo operations.
type Service interface {
	Register(ctx context.Context, userID, url string, tags []string) (*models.Photo, error)
	ListByUser(ctx context.Context, userID string) ([]models.Photo, error)
	Delete(ctx context.Context, photoID, requesterID string) error
}

// Handler handles photo API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new photos handler.
func NewHandler(service *photos.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new photos handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type registerRequest struct {
	URL  string   `json:"url" binding:"required"`
	Tags []string `json:"tags" binding:"required"`
}

// Register records a new photo for the authenticated user.
// POST /api/v1/photos.
func (h *Handler) Register(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "url and tags are required")
		return
	}

	photo, err := h.service.Register(c.Request.Context(), userID, req.URL, req.Tags)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to register photo")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to register photo")
		return
	}

	c.JSON(http.StatusCreated, photo)
}

// List returns a user's photos. With a user_id query parameter any
// caller can browse that user's gallery; without one the caller's own
// photos are listed.
// GET /api/v1/photos.
func (h *Handler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		var ok bool
		userID, ok = h.requireUser(c)
		if !ok {
			return
		}
	}

	result, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list photos")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photos": result,
		"total":  len(result),
	})
}

// Delete removes one of the authenticated user's photos.
// DELETE /api/v1/photos/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	photoID := c.Param("id")
	if photoID == "" {
		h.errorResponse(c, http.StatusBadRequest, "photo id is required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), photoID, userID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "Photo not found")
		case errors.Is(err, photos.ErrNotOwner):
			h.errorResponse(c, http.StatusForbidden, "Photo belongs to another user")
		default:
			h.log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to delete photo")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to delete photo")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// requireUser extracts the caller identity set by the upstream gateway.
func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		h.errorResponse(c, http.StatusUnauthorized, "Missing X-User-ID header")
		return "", false
	}
	return userID, true
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
