// Package achievements provides achievement evaluation and awarding.
//
// Evaluation is an explicit operation, run by the cron scheduler or on
// demand, never as a hidden side effect of a read path. It consumes the
// rating core's counters read-only.
package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/metrics"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/notify"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// AchievementRepository interface for catalog and unlock operations.
type AchievementRepository interface {
	GetAll() ([]models.Achievement, error)
	Seed(achievement *models.Achievement) error
	Award(userID string, achievementID uint) (bool, error)
	GetUserAchievements(userID string) ([]models.UserAchievement, error)
}

// PhotoRepository interface for counter aggregation.
type PhotoRepository interface {
	GetUserCounters(userID string) (*repository.UserCounters, error)
	GetUserTagWins(userID, tag string) (int64, error)
}

// UserRepository interface for user listing.
type UserRepository interface {
	List() ([]models.User, error)
}

// Notifier interface for unlock announcements.
type Notifier interface {
	NotifyUnlock(ctx context.Context, event *notify.UnlockEvent) error
}

// Service evaluates achievement criteria and awards unlocks.
type Service struct {
	achievementRepo AchievementRepository
	photoRepo       PhotoRepository
	userRepo        UserRepository
	notifier        Notifier
	log             *logger.Logger
}

// NewService creates a new achievement service.
func NewService(
	achievementRepo *repository.AchievementRepository,
	photoRepo *repository.PhotoRepository,
	userRepo *repository.UserRepository,
	notifier *notify.Client,
	log *logger.Logger,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		photoRepo:       photoRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	achievementRepo AchievementRepository,
	photoRepo PhotoRepository,
	userRepo UserRepository,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		photoRepo:       photoRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		log:             log,
	}
}

// SeedCatalog upserts the configured achievement catalog at startup.
func (s *Service) SeedCatalog(entries []config.AchievementConfig) error {
	for _, entry := range entries {
		achievement := models.Achievement{
			Name:          entry.Name,
			Description:   entry.Description,
			Icon:          entry.Icon,
			CriteriaType:  entry.CriteriaType,
			CriteriaValue: entry.CriteriaValue,
		}
		if err := s.achievementRepo.Seed(&achievement); err != nil {
			return fmt.Errorf("failed to seed achievement catalog: %w", err)
		}
	}
	s.log.Info().Int("entries", len(entries)).Msg("Achievement catalog seeded")
	return nil
}

// GetCatalog returns the full achievement catalog.
func (s *Service) GetCatalog(ctx context.Context) ([]models.Achievement, error) {
	return s.achievementRepo.GetAll()
}

// GetUserAchievements returns a user's unlocks.
func (s *Service) GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	return s.achievementRepo.GetUserAchievements(userID)
}

// EvaluateUser checks every catalog entry against one user's counters and
// awards what they qualify for. Returns the number of new unlocks.
func (s *Service) EvaluateUser(ctx context.Context, userID string) (int, error) {
	catalog, err := s.achievementRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load achievement catalog: %w", err)
	}
	if len(catalog) == 0 {
		return 0, nil
	}

	counters, err := s.photoRepo.GetUserCounters(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load counters for user %s: %w", userID, err)
	}

	awarded := 0
	for i := range catalog {
		achievement := &catalog[i]
		met, err := s.meetsCriteria(achievement, userID, counters)
		if err != nil {
			s.log.Warn().Err(err).
				Str("user_id", userID).
				Str("achievement", achievement.Name).
				Msg("Criteria evaluation failed")
			continue
		}
		if !met {
			continue
		}

		isNew, err := s.achievementRepo.Award(userID, achievement.ID)
		if err != nil {
			s.log.Error().Err(err).
				Str("user_id", userID).
				Str("achievement", achievement.Name).
				Msg("Failed to award achievement")
			continue
		}
		if !isNew {
			continue
		}

		awarded++
		metrics.AchievementsAwardedTotal.WithLabelValues(achievement.Name).Inc()
		s.log.Info().
			Str("user_id", userID).
			Str("achievement", achievement.Name).
			Msg("Achievement awarded")

		if err := s.notifier.NotifyUnlock(ctx, &notify.UnlockEvent{
			UserID:          userID,
			AchievementName: achievement.Name,
			Icon:            achievement.Icon,
			EarnedAt:        time.Now(),
		}); err != nil {
			s.log.Warn().Err(err).Str("achievement", achievement.Name).Msg("Unlock notification failed")
		}
	}

	return awarded, nil
}

// EvaluateAll runs the evaluation for every known user. Returns the total
// number of new unlocks.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	total := 0
	for _, user := range users {
		awarded, err := s.EvaluateUser(ctx, user.ID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("User evaluation failed")
			continue
		}
		total += awarded
	}
	return total, nil
}

// meetsCriteria checks one catalog entry against a user's counters.
func (s *Service) meetsCriteria(achievement *models.Achievement, userID string, counters *repository.UserCounters) (bool, error) {
	threshold := int64(achievement.CriteriaValue)

	if tag, ok := achievement.TagWinCriteriaTag(); ok {
		wins, err := s.photoRepo.GetUserTagWins(userID, tag)
		if err != nil {
			return false, err
		}
		return wins >= threshold, nil
	}

	switch achievement.CriteriaType {
	case models.CriteriaUploadCount:
		return counters.UploadCount >= threshold, nil
	case models.CriteriaMatchCount:
		return counters.TotalMatches >= threshold, nil
	case models.CriteriaScoreThreshold:
		return int64(counters.BestScore) >= threshold, nil
	case models.CriteriaWinRateThreshold:
		// Percentage threshold; undefined until the user has matches.
		if counters.TotalMatches == 0 {
			return false, nil
		}
		rate := float64(counters.TotalWins) / float64(counters.TotalMatches) * 100
		return rate >= float64(achievement.CriteriaValue), nil
	default:
		return false, fmt.Errorf("unsupported criteria type: %s", achievement.CriteriaType)
	}
}
