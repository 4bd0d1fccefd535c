package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beautypk/photo-arena/internal/models"
)

// AchievementRepository handles the achievement catalog and unlock records.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// GetAll retrieves the full achievement catalog.
func (r *AchievementRepository) GetAll() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Order("created_at ASC").Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

// GetByID retrieves an achievement by its ID.
func (r *AchievementRepository) GetByID(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.First(&achievement, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("achievement %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement %d: %w", id, err)
	}
	return &achievement, nil
}

// Seed upserts one catalog entry by name. Existing rows keep their unlock
// records; only the descriptive fields and criteria refresh.
func (r *AchievementRepository) Seed(achievement *models.Achievement) error {
	var existing models.Achievement
	err := r.db.Where("name = ?", achievement.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(achievement).Error; err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", achievement.Name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up achievement %s: %w", achievement.Name, err)
	}

	existing.Description = achievement.Description
	existing.Icon = achievement.Icon
	existing.CriteriaType = achievement.CriteriaType
	existing.CriteriaValue = achievement.CriteriaValue
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update achievement %s: %w", achievement.Name, err)
	}
	achievement.ID = existing.ID
	return nil
}

// Award records an unlock. Idempotent: awarding an already earned
// achievement is a no-op success.
func (r *AchievementRepository) Award(userID string, achievementID uint) (awarded bool, err error) {
	earned, err := r.HasUserEarned(userID, achievementID)
	if err != nil {
		return false, err
	}
	if earned {
		return false, nil
	}

	record := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
	}
	if err := r.db.Create(&record).Error; err != nil {
		return false, fmt.Errorf("failed to award achievement %d to user %s: %w", achievementID, userID, err)
	}
	return true, nil
}

// HasUserEarned checks whether a user already unlocked an achievement.
func (r *AchievementRepository) HasUserEarned(userID string, achievementID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check achievement %d for user %s: %w", achievementID, userID, err)
	}
	return count > 0, nil
}

// GetUserAchievements retrieves a user's unlocks with the catalog entries
// preloaded, newest first.
func (r *AchievementRepository) GetUserAchievements(userID string) ([]models.UserAchievement, error) {
	var records []models.UserAchievement
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Achievement").
		Order("earned_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements for user %s: %w", userID, err)
	}
	return records, nil
}
