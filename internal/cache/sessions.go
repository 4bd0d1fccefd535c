// Package cache provides the Redis-backed match session store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// MatchSession is the pair of photos a match_id was minted for. The vote
// endpoint checks submitted ids against it so a client cannot report an
// outcome for a pairing the matchmaker never served.
type MatchSession struct {
	PhotoA string `json:"photo_a"`
	PhotoB string `json:"photo_b"`
}

// Covers reports whether the submitted winner/loser pair is exactly the pair
// this session was minted for.
func (s *MatchSession) Covers(winnerID, loserID string) bool {
	return (s.PhotoA == winnerID && s.PhotoB == loserID) ||
		(s.PhotoA == loserID && s.PhotoB == winnerID)
}

// SessionStore persists match sessions in Redis with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSessionStore connects to Redis and returns a session store.
func NewSessionStore(cfg *config.RedisConfig, ttl time.Duration, log *logger.Logger) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("Connected to Redis")

	return &SessionStore{client: client, ttl: ttl, log: log}, nil
}

// NewSessionStoreWithClient wraps an existing client (used in tests with
// miniredis).
func NewSessionStoreWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, log: log}
}

func sessionKey(matchID string) string {
	return "match:session:" + matchID
}

// Put stores the pair a match_id was minted for.
func (s *SessionStore) Put(ctx context.Context, matchID string, session *MatchSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal match session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(matchID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store match session %s: %w: %w", matchID, models.ErrUpstream, err)
	}
	return nil
}

// Get retrieves a stored session. Returns (nil, nil) when the session
// expired or never existed; the vote path treats that as "nothing to
// validate against" rather than an error, since sessions are an anti-abuse
// aid, not the source of truth.
func (s *SessionStore) Get(ctx context.Context, matchID string) (*MatchSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(matchID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match session %s: %w: %w", matchID, models.ErrUpstream, err)
	}

	var session MatchSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match session %s: %w", matchID, err)
	}
	return &session, nil
}

// Delete removes a session once its vote has been recorded.
func (s *SessionStore) Delete(ctx context.Context, matchID string) error {
	if err := s.client.Del(ctx, sessionKey(matchID)).Err(); err != nil {
		return fmt.Errorf("failed to delete match session %s: %w: %w", matchID, models.ErrUpstream, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
