package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/pkg/logger"
)

func setupSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStoreWithClient(client, 10*time.Minute, logger.New("error", "json", "stdout"))
	return store, mr
}

func TestSessionStore_PutGet(t *testing.T) {
	store, _ := setupSessionStore(t)
	ctx := context.Background()

	session := &MatchSession{PhotoA: "photo-a", PhotoB: "photo-b"}
	require.NoError(t, store.Put(ctx, "match-1", session))

	got, err := store.Get(ctx, "match-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "photo-a", got.PhotoA)
	assert.Equal(t, "photo-b", got.PhotoB)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store, _ := setupSessionStore(t)

	got, err := store.Get(context.Background(), "never-minted")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "match-2", &MatchSession{PhotoA: "a", PhotoB: "b"}))

	mr.FastForward(11 * time.Minute)

	got, err := store.Get(ctx, "match-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "match-3", &MatchSession{PhotoA: "a", PhotoB: "b"}))
	require.NoError(t, store.Delete(ctx, "match-3"))

	got, err := store.Get(ctx, "match-3")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_TransportFailureIsUpstreamError(t *testing.T) {
	store, mr := setupSessionStore(t)
	ctx := context.Background()

	mr.Close()

	err := store.Put(ctx, "match-4", &MatchSession{PhotoA: "a", PhotoB: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUpstream))

	_, err = store.Get(ctx, "match-4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUpstream))
}

func TestMatchSession_Covers(t *testing.T) {
	session := &MatchSession{PhotoA: "a", PhotoB: "b"}

	assert.True(t, session.Covers("a", "b"))
	assert.True(t, session.Covers("b", "a"))
	assert.False(t, session.Covers("a", "c"))
	assert.False(t, session.Covers("c", "d"))
}
