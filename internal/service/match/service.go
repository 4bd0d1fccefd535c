// Package match implements fair pairwise matchmaking over the photo pool.
package match

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/beautypk/photo-arena/internal/cache"
	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/metrics"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// PhotoRepository interface for candidate queries.
type PhotoRepository interface {
	ListCandidates(excludeIDs, tags []string, poolSize int) ([]models.Photo, error)
}

// SessionStore interface for minting match sessions.
type SessionStore interface {
	Put(ctx context.Context, matchID string, session *cache.MatchSession) error
}

// Rand is the randomness the selector draws from. The default is the shared
// math/rand/v2 source; tests inject a seeded *rand.Rand.
type Rand interface {
	Float64() float64
}

type sharedRand struct{}

func (sharedRand) Float64() float64 { return rand.Float64() }

// Fallback labels describing which constraints had to be relaxed to produce
// a pairing.
const (
	FallbackNone            = "none"
	FallbackTagsDropped     = "tags_dropped"
	FallbackExcludesDropped = "excludes_dropped"
	FallbackOwnerDropped    = "owner_dropped"
)

// Match is a minted pairing.
type Match struct {
	MatchID  string         `json:"match_id"`
	Photos   []models.Photo `json:"photos"`
	Fallback string         `json:"-"`
}

// Service selects photo pairs under fairness and exclusion constraints.
type Service struct {
	photoRepo PhotoRepository
	sessions  SessionStore
	cfg       config.MatchmakingConfig
	rng       Rand
	log       *logger.Logger
}

// NewService creates a new matchmaking service with concrete dependencies.
func NewService(photoRepo *repository.PhotoRepository, sessions *cache.SessionStore, cfg config.MatchmakingConfig, log *logger.Logger) *Service {
	return &Service{
		photoRepo: photoRepo,
		sessions:  sessions,
		cfg:       cfg,
		rng:       sharedRand{},
		log:       log,
	}
}

// NewServiceWithInterfaces creates a new matchmaking service with interface
// dependencies and an injectable randomness source (useful for testing).
func NewServiceWithInterfaces(photoRepo PhotoRepository, sessions SessionStore, cfg config.MatchmakingConfig, rng Rand, log *logger.Logger) *Service {
	return &Service{
		photoRepo: photoRepo,
		sessions:  sessions,
		cfg:       cfg,
		rng:       rng,
		log:       log,
	}
}

// SelectMatch returns two eligible photos for a new pairing.
//
// The preferred draw honors every constraint: active photos only, tag filter
// (OR across requested tags), client exclusions, distinct owners. Selection
// within the eligible pool is weighted toward photos with fewer matches so
// rarely shown photos surface more often. When a constraint set cannot
// produce two distinct photos, constraints are relaxed progressively (tag
// filter first, then the exclude list, then the same-owner rule) before
// giving up with models.ErrInsufficientCandidates.
//
// The exclude list is honored in full on the exclusion-honoring attempts.
// MaxExcludedIDs only bounds the SQL clause: when the list exceeds it, the
// most recent ids go into the query and the overflow is filtered from the
// returned pool in memory.
func (s *Service) SelectMatch(ctx context.Context, excludeIDs, tagFilter []string) (*Match, error) {
	queryExcludes := excludeIDs
	if len(queryExcludes) > s.cfg.MaxExcludedIDs {
		queryExcludes = queryExcludes[len(queryExcludes)-s.cfg.MaxExcludedIDs:]
	}

	attempts := []struct {
		fallback      string
		excludes      []string
		tags          []string
		honorExcludes bool
		distinctOwner bool
	}{
		{FallbackNone, queryExcludes, tagFilter, true, true},
		{FallbackTagsDropped, queryExcludes, nil, true, true},
		{FallbackExcludesDropped, nil, nil, false, true},
		{FallbackOwnerDropped, nil, nil, false, false},
	}

	for _, attempt := range attempts {
		// Skip relaxations that change nothing.
		if attempt.fallback == FallbackTagsDropped && len(tagFilter) == 0 {
			continue
		}
		if attempt.fallback == FallbackExcludesDropped && len(excludeIDs) == 0 {
			continue
		}

		candidates, err := s.photoRepo.ListCandidates(attempt.excludes, attempt.tags, s.cfg.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidates: %w", err)
		}
		if attempt.honorExcludes {
			candidates = dropExcluded(candidates, excludeIDs)
		}

		photoA, photoB, ok := s.pickPair(candidates, attempt.distinctOwner)
		if !ok {
			continue
		}

		match := &Match{
			MatchID:  uuid.NewString(),
			Photos:   []models.Photo{photoA, photoB},
			Fallback: attempt.fallback,
		}

		if err := s.sessions.Put(ctx, match.MatchID, &cache.MatchSession{
			PhotoA: photoA.ID,
			PhotoB: photoB.ID,
		}); err != nil {
			// The session only hardens vote validation; the match is
			// still servable without it.
			s.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Failed to store match session")
		}

		if attempt.fallback != FallbackNone {
			s.log.Debug().
				Str("fallback", attempt.fallback).
				Msg("Matchmaking constraints relaxed")
		}
		metrics.MatchesServedTotal.WithLabelValues(attempt.fallback).Inc()
		return match, nil
	}

	metrics.MatchmakingFailedTotal.Inc()
	return nil, fmt.Errorf("matchmaking pool too small: %w", models.ErrInsufficientCandidates)
}

// dropExcluded removes pool entries the client asked not to see again. The
// repository query already filters the ids it was given; this catches the
// part of an oversized exclude list that stayed out of the SQL clause.
func dropExcluded(pool []models.Photo, excludeIDs []string) []models.Photo {
	if len(excludeIDs) == 0 {
		return pool
	}
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	kept := pool[:0]
	for _, p := range pool {
		if _, ok := excluded[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	return kept
}

// pickPair draws two distinct photos from the pool, weighted toward
// less-matched photos. With distinctOwner set the two photos must belong to
// different uploaders.
func (s *Service) pickPair(pool []models.Photo, distinctOwner bool) (models.Photo, models.Photo, bool) {
	remaining := make([]models.Photo, len(pool))
	copy(remaining, pool)

	for len(remaining) >= 2 {
		first := s.drawWeighted(remaining)
		photoA := remaining[first]

		partners := make([]models.Photo, 0, len(remaining)-1)
		for i, p := range remaining {
			if i == first {
				continue
			}
			if distinctOwner && p.UserID == photoA.UserID {
				continue
			}
			partners = append(partners, p)
		}

		if len(partners) > 0 {
			photoB := partners[s.drawWeighted(partners)]
			return photoA, photoB, true
		}

		// No valid partner for this pick; drop it and try another anchor.
		remaining = append(remaining[:first], remaining[first+1:]...)
	}

	return models.Photo{}, models.Photo{}, false
}

// drawWeighted picks an index with probability proportional to 1/(1+matches).
func (s *Service) drawWeighted(pool []models.Photo) int {
	total := 0.0
	weights := make([]float64, len(pool))
	for i, p := range pool {
		weights[i] = 1.0 / float64(1+p.Matches)
		total += weights[i]
	}

	target := s.rng.Float64() * total
	for i, w := range weights {
		target -= w
		if target <= 0 {
			return i
		}
	}
	return len(pool) - 1
}
