package mocks

import (
	"time"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
)

// MockPhotoRepository is a simple mock for the photo repository
type MockPhotoRepository struct {
	CreateFunc          func(photo *models.Photo, tags []string) error
	GetByIDFunc         func(id string) (*models.Photo, error)
	ListByUserFunc      func(userID string) ([]models.Photo, error)
	DeleteFunc          func(id string) error
	ListCandidatesFunc  func(excludeIDs, tags []string, poolSize int) ([]models.Photo, error)
	ListByScoreFunc     func(offset, limit int) ([]models.Photo, int64, error)
	GetUserCountersFunc func(userID string) (*repository.UserCounters, error)
	GetUserTagWinsFunc  func(userID, tag string) (int64, error)
	GetRankByScoreFunc  func(score int) (int, error)
	CountActiveFunc     func() (int64, error)
}

func (m *MockPhotoRepository) Create(photo *models.Photo, tags []string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(photo, tags)
	}
	return nil
}

func (m *MockPhotoRepository) GetByID(id string) (*models.Photo, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPhotoRepository) ListByUser(userID string) ([]models.Photo, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(userID)
	}
	return []models.Photo{}, nil
}

func (m *MockPhotoRepository) Delete(id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}

func (m *MockPhotoRepository) ListCandidates(excludeIDs, tags []string, poolSize int) ([]models.Photo, error) {
	if m.ListCandidatesFunc != nil {
		return m.ListCandidatesFunc(excludeIDs, tags, poolSize)
	}
	return []models.Photo{}, nil
}

func (m *MockPhotoRepository) ListByScore(offset, limit int) ([]models.Photo, int64, error) {
	if m.ListByScoreFunc != nil {
		return m.ListByScoreFunc(offset, limit)
	}
	return []models.Photo{}, 0, nil
}

func (m *MockPhotoRepository) GetUserCounters(userID string) (*repository.UserCounters, error) {
	if m.GetUserCountersFunc != nil {
		return m.GetUserCountersFunc(userID)
	}
	return &repository.UserCounters{}, nil
}

func (m *MockPhotoRepository) GetUserTagWins(userID, tag string) (int64, error) {
	if m.GetUserTagWinsFunc != nil {
		return m.GetUserTagWinsFunc(userID, tag)
	}
	return 0, nil
}

func (m *MockPhotoRepository) GetRankByScore(score int) (int, error) {
	if m.GetRankByScoreFunc != nil {
		return m.GetRankByScoreFunc(score)
	}
	return 0, nil
}

func (m *MockPhotoRepository) CountActive() (int64, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc()
	}
	return 0, nil
}

// MockVoteRepository is a simple mock for the vote repository
type MockVoteRepository struct {
	RecordVoteFunc     func(winnerID, loserID string, voterID *string) (*repository.VoteResult, error)
	UpsertTagStatsFunc func(winnerID, loserID string, mutualTags []string) error
}

func (m *MockVoteRepository) RecordVote(winnerID, loserID string, voterID *string) (*repository.VoteResult, error) {
	if m.RecordVoteFunc != nil {
		return m.RecordVoteFunc(winnerID, loserID, voterID)
	}
	return &repository.VoteResult{}, nil
}

func (m *MockVoteRepository) UpsertTagStats(winnerID, loserID string, mutualTags []string) error {
	if m.UpsertTagStatsFunc != nil {
		return m.UpsertTagStatsFunc(winnerID, loserID, mutualTags)
	}
	return nil
}

// MockEnergyRepository is a simple mock for the energy repository
type MockEnergyRepository struct {
	ConsumeFunc func(userID string, cost, defaultMax int, regen time.Duration) (bool, *repository.EnergyState, error)
	AddFunc     func(userID string, amount, defaultMax int, regen time.Duration) (*repository.EnergyState, error)
	SyncFunc    func(userID string, defaultMax int, regen time.Duration) (*repository.EnergyState, error)
}

func (m *MockEnergyRepository) Consume(userID string, cost, defaultMax int, regen time.Duration) (bool, *repository.EnergyState, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(userID, cost, defaultMax, regen)
	}
	return true, &repository.EnergyState{Current: defaultMax - cost, Max: defaultMax}, nil
}

func (m *MockEnergyRepository) Add(userID string, amount, defaultMax int, regen time.Duration) (*repository.EnergyState, error) {
	if m.AddFunc != nil {
		return m.AddFunc(userID, amount, defaultMax, regen)
	}
	return &repository.EnergyState{Current: defaultMax, Max: defaultMax}, nil
}

func (m *MockEnergyRepository) Sync(userID string, defaultMax int, regen time.Duration) (*repository.EnergyState, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(userID, defaultMax, regen)
	}
	return &repository.EnergyState{Current: defaultMax, Max: defaultMax}, nil
}

// MockUserRepository is a simple mock for the user repository
type MockUserRepository struct {
	GetByIDFunc      func(id string) (*models.User, error)
	EnsureExistsFunc func(id, email, displayName string) (*models.User, error)
	ListFunc         func() ([]models.User, error)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) EnsureExists(id, email, displayName string) (*models.User, error) {
	if m.EnsureExistsFunc != nil {
		return m.EnsureExistsFunc(id, email, displayName)
	}
	return &models.User{ID: id, Email: email, DisplayName: displayName}, nil
}

func (m *MockUserRepository) List() ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []models.User{}, nil
}

// MockAchievementRepository is a simple mock for the achievement repository
type MockAchievementRepository struct {
	GetAllFunc              func() ([]models.Achievement, error)
	SeedFunc                func(achievement *models.Achievement) error
	AwardFunc               func(userID string, achievementID uint) (bool, error)
	GetUserAchievementsFunc func(userID string) ([]models.UserAchievement, error)
}

func (m *MockAchievementRepository) GetAll() ([]models.Achievement, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc()
	}
	return []models.Achievement{}, nil
}

func (m *MockAchievementRepository) Seed(achievement *models.Achievement) error {
	if m.SeedFunc != nil {
		return m.SeedFunc(achievement)
	}
	return nil
}

func (m *MockAchievementRepository) Award(userID string, achievementID uint) (bool, error) {
	if m.AwardFunc != nil {
		return m.AwardFunc(userID, achievementID)
	}
	return false, nil
}

func (m *MockAchievementRepository) GetUserAchievements(userID string) ([]models.UserAchievement, error) {
	if m.GetUserAchievementsFunc != nil {
		return m.GetUserAchievementsFunc(userID)
	}
	return []models.UserAchievement{}, nil
}
