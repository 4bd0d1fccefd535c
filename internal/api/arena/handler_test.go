//nolint:noctx // Test file uses http.NewRequest for simplicity
package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/service/match"
	"github.com/beautypk/photo-arena/internal/service/vote"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// Mock Match Service
type mockMatchService struct {
	match       *match.Match
	err         error
	gotExcludes []string
	gotTags     []string
}

func (m *mockMatchService) SelectMatch(ctx context.Context, excludeIDs, tagFilter []string) (*match.Match, error) {
	m.gotExcludes = excludeIDs
	m.gotTags = tagFilter
	if m.err != nil {
		return nil, m.err
	}
	return m.match, nil
}

// Mock Vote Service
type mockVoteService struct {
	outcome    *vote.Outcome
	err        error
	gotMatchID string
	gotVoterID *string
}

func (m *mockVoteService) CastVote(ctx context.Context, matchID, winnerID, loserID string, voterID *string) (*vote.Outcome, error) {
	m.gotMatchID = matchID
	m.gotVoterID = voterID
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

// Test Setup
func setupTestHandler(matchService *mockMatchService, voteService *mockVoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("debug", "json", "stdout")
	handler := NewHandlerWithInterfaces(matchService, voteService, log)

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/match", handler.GetMatch)
	api.POST("/match/vote", handler.CastVote)
	return router
}

func servedMatch() *match.Match {
	return &match.Match{
		MatchID: "m-1",
		Photos: []models.Photo{
			{ID: "p1", UserID: "alice", Score: 1000},
			{ID: "p2", UserID: "bob", Score: 1000},
		},
	}
}

// Tests

func TestGetMatch_Success(t *testing.T) {
	matchService := &mockMatchService{match: servedMatch()}
	router := setupTestHandler(matchService, &mockVoteService{})

	req, _ := http.NewRequest("GET", "/api/v1/match?exclude=p5,p6&tags=Anime,Pets", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p5", "p6"}, matchService.gotExcludes)
	assert.Equal(t, []string{"Anime", "Pets"}, matchService.gotTags)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "m-1", response["match_id"])
	assert.Len(t, response["photos"], 2)
}

func TestGetMatch_LegacyCategoryParameter(t *testing.T) {
	matchService := &mockMatchService{match: servedMatch()}
	router := setupTestHandler(matchService, &mockVoteService{})

	req, _ := http.NewRequest("GET", "/api/v1/match?category=Anime", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Anime"}, matchService.gotTags)
}

func TestGetMatch_LegacyCategoryAllMeansNoFilter(t *testing.T) {
	matchService := &mockMatchService{match: servedMatch()}
	router := setupTestHandler(matchService, &mockVoteService{})

	req, _ := http.NewRequest("GET", "/api/v1/match?category=All", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, matchService.gotTags)
}

func TestGetMatch_InsufficientCandidates(t *testing.T) {
	matchService := &mockMatchService{err: fmt.Errorf("pool: %w", models.ErrInsufficientCandidates)}
	router := setupTestHandler(matchService, &mockVoteService{})

	req, _ := http.NewRequest("GET", "/api/v1/match", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Not enough photos")
}

func castVote(router *gin.Engine, body map[string]interface{}, userID string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/api/v1/match/vote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCastVote_Success(t *testing.T) {
	voteService := &mockVoteService{outcome: &vote.Outcome{PointsGained: 16, WinnerScore: 1016, LoserScore: 984}}
	router := setupTestHandler(&mockMatchService{}, voteService)

	w := castVote(router, map[string]interface{}{
		"match_id":  "m-1",
		"winner_id": "p1",
		"loser_id":  "p2",
	}, "alice")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m-1", voteService.gotMatchID)
	assert.NotNil(t, voteService.gotVoterID)
	assert.Equal(t, "alice", *voteService.gotVoterID)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(16), response["points_gained"])
	assert.Equal(t, float64(1016), response["winner_score"])
}

func TestCastVote_AnonymousHasNoVoterID(t *testing.T) {
	voteService := &mockVoteService{outcome: &vote.Outcome{PointsGained: 16}}
	router := setupTestHandler(&mockMatchService{}, voteService)

	w := castVote(router, map[string]interface{}{
		"winner_id": "p1",
		"loser_id":  "p2",
	}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, voteService.gotVoterID)
}

func TestCastVote_MissingFields(t *testing.T) {
	router := setupTestHandler(&mockMatchService{}, &mockVoteService{})

	w := castVote(router, map[string]interface{}{"winner_id": "p1"}, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCastVote_SamePhoto(t *testing.T) {
	router := setupTestHandler(&mockMatchService{}, &mockVoteService{})

	w := castVote(router, map[string]interface{}{
		"winner_id": "p1",
		"loser_id":  "p1",
	}, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCastVote_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"match mismatch", vote.ErrMatchMismatch, http.StatusBadRequest},
		{"unknown photos", fmt.Errorf("x: %w", models.ErrNotFound), http.StatusNotFound},
		{"energy exhausted", fmt.Errorf("x: %w", models.ErrEnergyExhausted), http.StatusTooManyRequests},
		{"concurrent conflict", fmt.Errorf("x: %w", models.ErrConflict), http.StatusConflict},
		{"internal", fmt.Errorf("database gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestHandler(&mockMatchService{}, &mockVoteService{err: tt.err})

			w := castVote(router, map[string]interface{}{
				"winner_id": "p1",
				"loser_id":  "p2",
			}, "alice")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
