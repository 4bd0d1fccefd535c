// Package leaderboard provides score rankings and per-user statistics.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// PhotoRepository interface for ranking queries.
type PhotoRepository interface {
	ListByScore(offset, limit int) ([]models.Photo, int64, error)
	ListByUser(userID string) ([]models.Photo, error)
	GetUserCounters(userID string) (*repository.UserCounters, error)
	GetRankByScore(score int) (int, error)
}

// AchievementRepository interface for unlock lookups.
type AchievementRepository interface {
	GetUserAchievements(userID string) ([]models.UserAchievement, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id string) (*models.User, error)
}

// Entry is one leaderboard row.
type Entry struct {
	Rank      int    `json:"rank"`
	PhotoID   string `json:"photo_id"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	Wins      int    `json:"wins"`
	Matches   int    `json:"matches"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name"`
}

// Page is one leaderboard page with pagination totals.
type Page struct {
	Entries    []Entry `json:"leaderboard"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalCount int64   `json:"total_count"`
}

// UserStats aggregates one user's standing across all their photos.
type UserStats struct {
	UserID       string               `json:"user_id"`
	DisplayName  string               `json:"display_name"`
	PhotoCount   int64                `json:"photo_count"`
	TotalWins    int64                `json:"total_wins"`
	TotalMatches int64                `json:"total_matches"`
	WinRate      float64              `json:"win_rate"`
	BestScore    int                  `json:"best_score"`
	GlobalRank   int                  `json:"global_rank"`
	Achievements []models.Achievement `json:"achievements"`
}

// Service builds leaderboards and user statistics.
type Service struct {
	photoRepo       PhotoRepository
	achievementRepo AchievementRepository
	userRepo        UserRepository
	log             *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	photoRepo *repository.PhotoRepository,
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		photoRepo:       photoRepo,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	photoRepo PhotoRepository,
	achievementRepo AchievementRepository,
	userRepo UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		photoRepo:       photoRepo,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		log:             log,
	}
}

// GetLeaderboard returns one page of photos ranked by score.
func (s *Service) GetLeaderboard(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	photos, total, err := s.photoRepo.ListByScore(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(photos))
	for i, p := range photos {
		name := p.User.DisplayName
		if name == "" {
			name = p.User.Email
		}
		entries = append(entries, Entry{
			Rank:      offset + i + 1,
			PhotoID:   p.ID,
			URL:       p.URL,
			Score:     p.Score,
			Wins:      p.Wins,
			Matches:   p.Matches,
			OwnerID:   p.UserID,
			OwnerName: name,
		})
	}

	return &Page{
		Entries:    entries,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
	}, nil
}

// GetUserStats returns a user's aggregate standing: counters across all
// their photos, win rate, best-photo rank and unlocked achievements.
func (s *Service) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	counters, err := s.photoRepo.GetUserCounters(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user counters: %w", err)
	}

	stats := &UserStats{
		UserID:       userID,
		DisplayName:  user.DisplayName,
		PhotoCount:   counters.UploadCount,
		TotalWins:    counters.TotalWins,
		TotalMatches: counters.TotalMatches,
		BestScore:    counters.BestScore,
	}
	if counters.TotalMatches > 0 {
		stats.WinRate = float64(counters.TotalWins) / float64(counters.TotalMatches)
	}

	if counters.UploadCount > 0 {
		rank, err := s.photoRepo.GetRankByScore(counters.BestScore)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to get global rank")
		} else {
			stats.GlobalRank = rank
		}
	}

	unlocks, err := s.achievementRepo.GetUserAchievements(userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to get user achievements")
	} else {
		for _, u := range unlocks {
			if u.Achievement.ID != 0 {
				stats.Achievements = append(stats.Achievements, u.Achievement)
			}
		}
	}

	return stats, nil
}
