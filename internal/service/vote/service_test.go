package vote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautypk/photo-arena/internal/cache"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/internal/service/energy"
	"github.com/beautypk/photo-arena/pkg/logger"
	"github.com/beautypk/photo-arena/test/mocks"
)

type mockEnergyGate struct {
	consumeCalls int
	granted      bool
	err          error
}

func (m *mockEnergyGate) TryConsume(ctx context.Context, userID string, cost int) (*energy.Result, error) {
	m.consumeCalls++
	if m.err != nil {
		return nil, m.err
	}
	return &energy.Result{Granted: m.granted, Energy: 5, MaxEnergy: 10}, nil
}

func setupTestService(voteRepo *mocks.MockVoteRepository, gate *mockEnergyGate) (*Service, *mocks.MockSessionStore) {
	sessions := mocks.NewMockSessionStore()
	log := logger.New("debug", "json", "stdout")
	return NewServiceWithInterfaces(voteRepo, gate, sessions, log), sessions
}

func successResult() *repository.VoteResult {
	return &repository.VoteResult{
		VoteID:         "v1",
		AppliedDelta:   16,
		NewWinnerScore: 1016,
		NewLoserScore:  984,
	}
}

func TestCastVote_AuthenticatedSuccess(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			assert.Equal(t, "w", winnerID)
			assert.Equal(t, "l", loserID)
			require.NotNil(t, voterID)
			assert.Equal(t, "alice", *voterID)
			return successResult(), nil
		},
	}
	gate := &mockEnergyGate{granted: true}
	service, _ := setupTestService(voteRepo, gate)

	voter := "alice"
	outcome, err := service.CastVote(context.Background(), "", "w", "l", &voter)
	require.NoError(t, err)
	assert.Equal(t, 16, outcome.PointsGained)
	assert.Equal(t, 1016, outcome.WinnerScore)
	assert.Equal(t, 984, outcome.LoserScore)
	assert.Equal(t, 1, gate.consumeCalls)
}

func TestCastVote_AnonymousSkipsEnergyGate(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			assert.Nil(t, voterID)
			return successResult(), nil
		},
	}
	gate := &mockEnergyGate{granted: false}
	service, _ := setupTestService(voteRepo, gate)

	_, err := service.CastVote(context.Background(), "", "w", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, gate.consumeCalls)
}

func TestCastVote_EnergyExhausted(t *testing.T) {
	recorded := false
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			recorded = true
			return successResult(), nil
		},
	}
	gate := &mockEnergyGate{granted: false}
	service, _ := setupTestService(voteRepo, gate)

	voter := "alice"
	_, err := service.CastVote(context.Background(), "", "w", "l", &voter)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEnergyExhausted))
	assert.False(t, recorded, "denied vote must not touch ratings")
}

func TestCastVote_SamePhotoRejected(t *testing.T) {
	service, _ := setupTestService(&mocks.MockVoteRepository{}, &mockEnergyGate{granted: true})

	_, err := service.CastVote(context.Background(), "", "p1", "p1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCastVote_RetriesOnceOnConflict(t *testing.T) {
	calls := 0
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			calls++
			if calls == 1 {
				return nil, models.ErrConflict
			}
			return successResult(), nil
		},
	}
	service, _ := setupTestService(voteRepo, &mockEnergyGate{granted: true})

	outcome, err := service.CastVote(context.Background(), "", "w", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 16, outcome.PointsGained)
}

func TestCastVote_SecondConflictSurfaces(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			return nil, models.ErrConflict
		},
	}
	service, _ := setupTestService(voteRepo, &mockEnergyGate{granted: true})

	_, err := service.CastVote(context.Background(), "", "w", "l", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestCastVote_MatchMismatch(t *testing.T) {
	service, sessions := setupTestService(&mocks.MockVoteRepository{}, &mockEnergyGate{granted: true})
	require.NoError(t, sessions.Put(context.Background(), "m1", &cache.MatchSession{PhotoA: "p1", PhotoB: "p2"}))

	_, err := service.CastVote(context.Background(), "m1", "p1", "p3", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatchMismatch))
}

func TestCastVote_SessionCoversEitherOrder(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			return successResult(), nil
		},
	}
	service, sessions := setupTestService(voteRepo, &mockEnergyGate{granted: true})
	require.NoError(t, sessions.Put(context.Background(), "m1", &cache.MatchSession{PhotoA: "p1", PhotoB: "p2"}))

	_, err := service.CastVote(context.Background(), "m1", "p2", "p1", nil)
	require.NoError(t, err)
}

func TestCastVote_ExpiredSessionStillCounts(t *testing.T) {
	// An expired or evicted session means no pairing record remains; the
	// vote is accepted on the photos alone.
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			return successResult(), nil
		},
	}
	service, _ := setupTestService(voteRepo, &mockEnergyGate{granted: true})

	_, err := service.CastVote(context.Background(), "gone", "w", "l", nil)
	require.NoError(t, err)
}

func TestCastVote_SessionLookupFailureIsNonFatal(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			return successResult(), nil
		},
	}
	service, sessions := setupTestService(voteRepo, &mockEnergyGate{granted: true})
	sessions.GetFunc = func(ctx context.Context, matchID string) (*cache.MatchSession, error) {
		return nil, errors.New("redis down")
	}

	_, err := service.CastVote(context.Background(), "m1", "w", "l", nil)
	require.NoError(t, err)
}

func TestCastVote_DeletesSessionAfterVote(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			return successResult(), nil
		},
	}
	service, sessions := setupTestService(voteRepo, &mockEnergyGate{granted: true})
	require.NoError(t, sessions.Put(context.Background(), "m1", &cache.MatchSession{PhotoA: "w", PhotoB: "l"}))

	_, err := service.CastVote(context.Background(), "m1", "w", "l", nil)
	require.NoError(t, err)
	assert.Empty(t, sessions.Stored())
}

func TestCastVote_TagStatFailureDoesNotFailVote(t *testing.T) {
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			result := successResult()
			result.MutualTags = []string{"portrait"}
			return result, nil
		},
		UpsertTagStatsFunc: func(winnerID, loserID string, mutualTags []string) error {
			return errors.New("deadlock")
		},
	}
	service, _ := setupTestService(voteRepo, &mockEnergyGate{granted: true})

	outcome, err := service.CastVote(context.Background(), "", "w", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, 16, outcome.PointsGained)
}

func TestCastVote_UpsertsTagStatsForMutualTags(t *testing.T) {
	var gotTags []string
	voteRepo := &mocks.MockVoteRepository{
		RecordVoteFunc: func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
			result := successResult()
			result.MutualTags = []string{"portrait", "street"}
			return result, nil
		},
		UpsertTagStatsFunc: func(winnerID, loserID string, mutualTags []string) error {
			gotTags = mutualTags
			return nil
		},
	}
	service, _ := setupTestService(voteRepo, &mockEnergyGate{granted: true})

	_, err := service.CastVote(context.Background(), "", "w", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"portrait", "street"}, gotTags)
}
