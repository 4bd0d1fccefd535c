// Package dashboard provides REST API handlers for leaderboards, user
// statistics and the achievement catalog.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/service/achievements"
	"github.com/beautypk/photo-arena/internal/service/leaderboard"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// LeaderboardService interface for ranking operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, page, limit int) (*leaderboard.Page, error)
	GetUserStats(ctx context.Context, userID string) (*leaderboard.UserStats, error)
}

// AchievementService interface for achievement operations.
type AchievementService interface {
	GetCatalog(ctx context.Context) ([]models.Achievement, error)
	GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	leaderboardService LeaderboardService
	achievementService AchievementService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(leaderboardService *leaderboard.Service, achievementService *achievements.Service, log *logger.Logger) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		achievementService: achievementService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(leaderboardService LeaderboardService, achievementService AchievementService, log *logger.Logger) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		achievementService: achievementService,
		log:                log,
	}
}

// GetLeaderboard returns one score-ranked page of photos.
// GET /api/v1/leaderboard?page=1&limit=20.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	page, err := h.parsePositiveInt(c, "page", 1)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parsePositiveInt(c, "limit", 20)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUserStats returns a user's aggregate standing.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		h.errorResponse(c, http.StatusBadRequest, "user id is required")
		return
	}

	stats, err := h.leaderboardService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAchievementCatalog returns all defined achievements.
// GET /api/v1/achievements.
func (h *Handler) GetAchievementCatalog(c *gin.Context) {
	catalog, err := h.achievementService.GetCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get achievement catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": catalog,
		"total":        len(catalog),
	})
}

// GetUserAchievements returns a user's unlocked achievements.
// GET /api/v1/users/:id/achievements.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		h.errorResponse(c, http.StatusBadRequest, "user id is required")
		return
	}

	unlocks, err := h.achievementService.GetUserAchievements(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user achievements")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": unlocks,
		"total":        len(unlocks),
	})
}

// parsePositiveInt parses a positive integer query parameter with a default.
func (h *Handler) parsePositiveInt(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.DefaultQuery(name, strconv.Itoa(defaultValue))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid %s parameter: must be a positive integer", name)
	}
	return value, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
