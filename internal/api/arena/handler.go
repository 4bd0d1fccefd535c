// Package arena provides REST API handlers for matchmaking and voting.
package arena

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/service/match"
	"github.com/beautypk/photo-arena/internal/service/vote"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// userIDHeader carries the authenticated user id, set by the upstream
// identity gateway. Absent for anonymous visitors.
const userIDHeader = "X-User-ID"

// MatchService interface for matchmaking operations.
type MatchService interface {
	SelectMatch(ctx context.Context, excludeIDs, tagFilter []string) (*match.Match, error)
}

// VoteService interface for vote operations.
type VoteService interface {
	CastVote(ctx context.Context, matchID, winnerID, loserID string, voterID *string) (*vote.Outcome, error)
}

// Handler handles matchmaking and vote requests.
type Handler struct {
	matchService MatchService
	voteService  VoteService
	log          *logger.Logger
}

// NewHandler creates a new arena handler.
func NewHandler(matchService *match.Service, voteService *vote.Service, log *logger.Logger) *Handler {
	return &Handler{matchService: matchService, voteService: voteService, log: log}
}

// NewHandlerWithInterfaces creates a new arena handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(matchService MatchService, voteService VoteService, log *logger.Logger) *Handler {
	return &Handler{matchService: matchService, voteService: voteService, log: log}
}

// GetMatch returns a fresh pairing.
// GET /api/v1/match?exclude=id1,id2&tags=Anime,Pets (legacy: &category=Anime).
func (h *Handler) GetMatch(c *gin.Context) {
	excludeIDs := splitCSV(c.Query("exclude"))
	tags := splitCSV(c.Query("tags"))
	if len(tags) == 0 {
		// Legacy single-category parameter; "All" means no filter.
		if category := c.Query("category"); category != "" && category != "All" {
			tags = []string{category}
		}
	}

	result, err := h.matchService.SelectMatch(c.Request.Context(), excludeIDs, tags)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCandidates) {
			h.errorResponse(c, http.StatusNotFound, "Not enough photos to match (Minimum 2 required)")
			return
		}
		h.log.Error().Err(err).Msg("Matchmaking failed")
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match_id": result.MatchID,
		"photos":   result.Photos,
	})
}

// voteRequest is the vote submission payload.
type voteRequest struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id" binding:"required"`
	LoserID  string `json:"loser_id" binding:"required"`
}

// CastVote records a match outcome.
// POST /api/v1/match/vote.
func (h *Handler) CastVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Missing winner_id or loser_id")
		return
	}
	if req.WinnerID == req.LoserID {
		h.errorResponse(c, http.StatusBadRequest, "winner_id and loser_id must differ")
		return
	}

	var voterID *string
	if id := c.GetHeader(userIDHeader); id != "" {
		voterID = &id
	}

	outcome, err := h.voteService.CastVote(c.Request.Context(), req.MatchID, req.WinnerID, req.LoserID, voterID)
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrMatchMismatch):
			h.errorResponse(c, http.StatusBadRequest, "Vote does not match the served pairing")
		case errors.Is(err, models.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "Photos not found")
		case errors.Is(err, models.ErrEnergyExhausted):
			// Expected steady-state condition; clients show it as a notice.
			h.errorResponse(c, http.StatusTooManyRequests, "Not enough energy")
		case errors.Is(err, models.ErrConflict):
			h.errorResponse(c, http.StatusConflict, "Vote conflicted with a concurrent update, please retry")
		default:
			h.log.Error().Err(err).Msg("Vote failed")
			h.errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"points_gained": outcome.PointsGained,
		"winner_score":  outcome.WinnerScore,
		"loser_score":   outcome.LoserScore,
	})
}

// splitCSV parses a comma-separated query parameter, dropping empty items.
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
