// Package vote implements the vote pipeline: energy gate, atomic rating
// update, audit ledger and tag-level stats.
package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beautypk/photo-arena/internal/cache"
	"github.com/beautypk/photo-arena/internal/metrics"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/internal/service/energy"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// ErrMatchMismatch indicates the submitted photo pair is not the pair the
// matchmaker served under the given match_id.
var ErrMatchMismatch = errors.New("vote does not match the served pairing")

// VoteRepository interface for vote recording operations.
type VoteRepository interface {
	RecordVote(winnerID, loserID string, voterID *string) (*repository.VoteResult, error)
	UpsertTagStats(winnerID, loserID string, mutualTags []string) error
}

// EnergyGate interface for vote authorization.
type EnergyGate interface {
	TryConsume(ctx context.Context, userID string, cost int) (*energy.Result, error)
}

// SessionStore interface for match session validation.
type SessionStore interface {
	Get(ctx context.Context, matchID string) (*cache.MatchSession, error)
	Delete(ctx context.Context, matchID string) error
}

// Outcome reports a completed vote back to the client.
type Outcome struct {
	PointsGained int `json:"points_gained"`
	WinnerScore  int `json:"winner_score"`
	LoserScore   int `json:"loser_score"`
}

// Service runs the vote pipeline.
type Service struct {
	voteRepo VoteRepository
	gate     EnergyGate
	sessions SessionStore
	log      *logger.Logger
}

// NewService creates a new vote service with concrete dependencies.
func NewService(voteRepo *repository.VoteRepository, gate *energy.Service, sessions *cache.SessionStore, log *logger.Logger) *Service {
	return &Service{voteRepo: voteRepo, gate: gate, sessions: sessions, log: log}
}

// NewServiceWithInterfaces creates a new vote service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(voteRepo VoteRepository, gate EnergyGate, sessions SessionStore, log *logger.Logger) *Service {
	return &Service{voteRepo: voteRepo, gate: gate, sessions: sessions, log: log}
}

// CastVote records one match outcome.
//
// Pipeline: validate the pairing against the minted session when one is
// still cached, charge the voter's energy (authenticated voters only), then
// apply the rating update and ledger writes as one atomic unit, retrying
// once if a concurrent vote invalidated the read scores. Tag-level stats are
// applied after the main commit, best-effort.
func (s *Service) CastVote(ctx context.Context, matchID, winnerID, loserID string, voterID *string) (*Outcome, error) {
	start := time.Now()

	if winnerID == loserID {
		return nil, fmt.Errorf("winner and loser must differ: %w", models.ErrNotFound)
	}

	if matchID != "" {
		session, err := s.sessions.Get(ctx, matchID)
		if err != nil {
			// Session lookup failing must not block voting; the DB is the
			// source of truth.
			s.log.Warn().Err(err).Str("match_id", matchID).Msg("Match session lookup failed")
		} else if session != nil && !session.Covers(winnerID, loserID) {
			return nil, ErrMatchMismatch
		}
	}

	voterLabel := "anonymous"
	if voterID != nil {
		voterLabel = "authenticated"
		granted, err := s.gate.TryConsume(ctx, *voterID, 1)
		if err != nil {
			return nil, fmt.Errorf("energy gate: %w", err)
		}
		if !granted.Granted {
			metrics.EnergyDeniedTotal.Inc()
			return nil, fmt.Errorf("user %s: %w", *voterID, models.ErrEnergyExhausted)
		}
	}

	result, err := s.voteRepo.RecordVote(winnerID, loserID, voterID)
	if errors.Is(err, models.ErrConflict) {
		metrics.VoteConflictRetriesTotal.Inc()
		s.log.Debug().
			Str("winner_id", winnerID).
			Str("loser_id", loserID).
			Msg("Vote conflicted with a concurrent update, retrying")
		result, err = s.voteRepo.RecordVote(winnerID, loserID, voterID)
	}
	if err != nil {
		return nil, err
	}

	// Tag stats trail the main commit; failures are logged, never surfaced.
	if len(result.MutualTags) > 0 {
		if err := s.voteRepo.UpsertTagStats(winnerID, loserID, result.MutualTags); err != nil {
			s.log.Error().Err(err).
				Str("vote_id", result.VoteID).
				Strs("tags", result.MutualTags).
				Msg("Failed to update tag stats")
		}
	}

	if matchID != "" {
		if err := s.sessions.Delete(ctx, matchID); err != nil {
			s.log.Debug().Err(err).Str("match_id", matchID).Msg("Failed to delete match session")
		}
	}

	metrics.VotesRecordedTotal.WithLabelValues(voterLabel).Inc()
	metrics.VoteDeltaPoints.Observe(float64(result.AppliedDelta))
	metrics.VoteDurationSeconds.Observe(time.Since(start).Seconds())

	return &Outcome{
		PointsGained: result.AppliedDelta,
		WinnerScore:  result.NewWinnerScore,
		LoserScore:   result.NewLoserScore,
	}, nil
}
