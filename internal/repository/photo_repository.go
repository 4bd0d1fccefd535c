package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beautypk/photo-arena/internal/models"
)

// PhotoRepository handles photo-related database operations.
type PhotoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new photo repository.
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a photo together with its tag rows.
func (r *PhotoRepository) Create(photo *models.Photo, tags []string) error {
	for _, tag := range tags {
		photo.Tags = append(photo.Tags, models.PhotoTag{Tag: tag})
	}
	if err := r.db.Create(photo).Error; err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo with its tags.
func (r *PhotoRepository) GetByID(id string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.Preload("Tags").First(&photo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo %s: %w", id, err)
	}
	return &photo, nil
}

// ListByUser retrieves a user's photos, newest first.
func (r *PhotoRepository) ListByUser(userID string) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for user %s: %w", userID, err)
	}
	return photos, nil
}

// Delete removes a photo with its tag rows and tag stats. Vote and score
// transaction rows are audit history and stay behind.
func (r *PhotoRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete photo tags: %w", err)
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoTagStat{}).Error; err != nil {
			return fmt.Errorf("failed to delete photo tag stats: %w", err)
		}
		res := tx.Delete(&models.Photo{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete photo: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

// ListCandidates returns up to poolSize active photos eligible for a match,
// least-exposed first. Photos in excludeIDs are skipped; when tags is
// non-empty only photos carrying at least one of them qualify (OR semantics).
// Ties on match count are broken randomly so fresh pools don't always serve
// the same pair.
func (r *PhotoRepository) ListCandidates(excludeIDs, tags []string, poolSize int) ([]models.Photo, error) {
	query := r.db.Model(&models.Photo{}).
		Preload("Tags").
		Where("photos.is_active = ?", true)

	if len(excludeIDs) > 0 {
		query = query.Where("photos.id NOT IN ?", excludeIDs)
	}
	if len(tags) > 0 {
		query = query.
			Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
			Where("photo_tags.tag IN ?", tags).
			Distinct("photos.*")
	}

	var photos []models.Photo
	err := query.
		Order("photos.matches ASC, random()").
		Limit(poolSize).
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list match candidates: %w", err)
	}
	return photos, nil
}

// CountActive returns the number of active photos.
func (r *PhotoRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).Where("is_active = ?", true).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active photos: %w", err)
	}
	return count, nil
}

// ListByScore returns one leaderboard page of photos ordered by score, with
// the owner preloaded, plus the total photo count for pagination.
func (r *PhotoRepository) ListByScore(offset, limit int) ([]models.Photo, int64, error) {
	var total int64
	if err := r.db.Model(&models.Photo{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	var photos []models.Photo
	err := r.db.Preload("User").
		Order("score DESC").
		Offset(offset).
		Limit(limit).
		Find(&photos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photos by score: %w", err)
	}
	return photos, total, nil
}

// UserCounters aggregates the rating core's counters for one user. The
// achievement evaluator consumes these read-only.
type UserCounters struct {
	UploadCount  int64
	TotalWins    int64
	TotalMatches int64
	BestScore    int
}

// GetUserCounters aggregates photo counters owned by a user.
func (r *PhotoRepository) GetUserCounters(userID string) (*UserCounters, error) {
	type row struct {
		UploadCount  int64
		TotalWins    int64
		TotalMatches int64
		BestScore    int
	}
	var out row
	err := r.db.Model(&models.Photo{}).
		Select("COUNT(*) AS upload_count, COALESCE(SUM(wins), 0) AS total_wins, COALESCE(SUM(matches), 0) AS total_matches, COALESCE(MAX(score), 0) AS best_score").
		Where("user_id = ?", userID).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate counters for user %s: %w", userID, err)
	}
	return &UserCounters{
		UploadCount:  out.UploadCount,
		TotalWins:    out.TotalWins,
		TotalMatches: out.TotalMatches,
		BestScore:    out.BestScore,
	}, nil
}

// GetUserTagWins sums a user's tag-level wins for one tag across all their
// photos.
func (r *PhotoRepository) GetUserTagWins(userID, tag string) (int64, error) {
	var wins int64
	err := r.db.Model(&models.PhotoTagStat{}).
		Select("COALESCE(SUM(photo_tag_stats.wins), 0)").
		Joins("JOIN photos ON photos.id = photo_tag_stats.photo_id").
		Where("photos.user_id = ? AND photo_tag_stats.tag = ?", userID, tag).
		Scan(&wins).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum tag wins for user %s tag %s: %w", userID, tag, err)
	}
	return wins, nil
}

// GetRankByScore returns the 1-based leaderboard rank of a score value.
func (r *PhotoRepository) GetRankByScore(score int) (int, error) {
	var ahead int64
	err := r.db.Model(&models.Photo{}).Where("score > ?", score).Count(&ahead).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return int(ahead) + 1, nil
}
