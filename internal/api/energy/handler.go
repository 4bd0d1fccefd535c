// Package energy provides REST API handlers for the energy gate RPCs.
package energy

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	energysvc "github.com/beautypk/photo-arena/internal/service/energy"
	"github.com/beautypk/photo-arena/pkg/logger"
)

const userIDHeader = "X-User-ID"

// Service interface for energy gate operations.
type Service interface {
	TryConsume(ctx context.Context, userID string, cost int) (*energysvc.Result, error)
	Add(ctx context.Context, userID string, amount int) (*energysvc.Result, error)
	Sync(ctx context.Context, userID string) (*energysvc.Result, error)
}

// Handler handles energy gate requests.
type Handler struct {
	service       Service
	anonymousSeed int
	log           *logger.Logger
}

// NewHandler creates a new energy handler. anonymousSeed is the trial
// balance advertised to visitors without an identity.
func NewHandler(service *energysvc.Service, anonymousSeed int, log *logger.Logger) *Handler {
	return &Handler{service: service, anonymousSeed: anonymousSeed, log: log}
}

// NewHandlerWithInterfaces creates a new energy handler with an interface
// dependency (useful for testing).
func NewHandlerWithInterfaces(service Service, anonymousSeed int, log *logger.Logger) *Handler {
	return &Handler{service: service, anonymousSeed: anonymousSeed, log: log}
}

type consumeRequest struct {
	Cost int `json:"cost"`
}

type addRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// Consume authorizes and charges one vote attempt.
// POST /api/v1/energy/consume.
func (h *Handler) Consume(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Cost <= 0 {
		req.Cost = 1
	}

	result, err := h.service.TryConsume(c.Request.Context(), userID, req.Cost)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Energy consume failed")
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	// A denial is a successful RPC with success=false, not an error.
	c.JSON(http.StatusOK, gin.H{
		"success":    result.Granted,
		"energy":     result.Energy,
		"max_energy": result.MaxEnergy,
	})
}

// Add credits bonus energy.
// POST /api/v1/energy/add.
func (h *Handler) Add(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		h.errorResponse(c, http.StatusBadRequest, "amount must be positive")
		return
	}

	result, err := h.service.Add(c.Request.Context(), userID, req.Amount)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Energy credit failed")
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"energy":     result.Energy,
		"max_energy": result.MaxEnergy,
	})
}

// Get returns the lazily synced balance. Anonymous visitors get the
// advertised trial seed so clients can initialize their local counter; no
// row is created for them.
// GET /api/v1/energy.
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{
			"energy":     h.anonymousSeed,
			"max_energy": h.anonymousSeed,
			"anonymous":  true,
		})
		return
	}

	result, err := h.service.Sync(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Energy sync failed")
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"energy":     result.Energy,
		"max_energy": result.MaxEnergy,
	})
}

// requireUser extracts the authenticated user id. Consume and Add mutate
// server-side balances, so anonymous visitors are rejected; their trial
// counter lives client-side.
func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
