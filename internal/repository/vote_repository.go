package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beautypk/photo-arena/internal/elo"
	"github.com/beautypk/photo-arena/internal/models"
)

// VoteRepository handles vote recording and the score audit ledger.
type VoteRepository struct {
	db *DB
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// VoteResult reports the outcome of a recorded vote.
type VoteResult struct {
	VoteID         string
	AppliedDelta   int
	NewWinnerScore int
	NewLoserScore  int
	MutualTags     []string
}

// RecordVote applies one match outcome as a single transaction: the vote row,
// both photos' score/counter updates and both ledger entries commit together
// or not at all.
//
// The score updates are conditional on the scores read at the start of the
// transaction. If a concurrent vote moved either photo's score in between,
// the transaction rolls back with models.ErrConflict and the caller retries
// the whole unit. This closes the lost-update race without explicit row
// locks.
//
// Mutual-tag stat upserts are intentionally NOT part of this transaction; see
// UpsertTagStats.
func (r *VoteRepository) RecordVote(winnerID, loserID string, voterID *string) (*VoteResult, error) {
	if winnerID == loserID {
		return nil, fmt.Errorf("photo cannot face itself: %w", models.ErrNotFound)
	}

	var result VoteResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var photos []models.Photo
		if err := tx.Preload("Tags").Where("id IN ?", []string{winnerID, loserID}).Find(&photos).Error; err != nil {
			return fmt.Errorf("failed to fetch photos: %w", err)
		}
		if len(photos) != 2 {
			return fmt.Errorf("winner %s / loser %s: %w", winnerID, loserID, models.ErrNotFound)
		}

		var winner, loser *models.Photo
		for i := range photos {
			switch photos[i].ID {
			case winnerID:
				winner = &photos[i]
			case loserID:
				loser = &photos[i]
			}
		}

		delta, newWinnerScore, newLoserScore := elo.Apply(winner.Score, loser.Score)

		vote := models.Vote{
			WinnerPhotoID: winnerID,
			LoserPhotoID:  loserID,
			VoterID:       voterID,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("failed to create vote: %w", err)
		}

		if err := applyScoreUpdate(tx, winnerID, winner.Score, newWinnerScore, "wins"); err != nil {
			return err
		}
		if err := applyScoreUpdate(tx, loserID, loser.Score, newLoserScore, "losses"); err != nil {
			return err
		}

		transactions := []models.ScoreTransaction{
			{
				PhotoID:       winnerID,
				VoteID:        vote.ID,
				Delta:         delta,
				PreviousScore: winner.Score,
				NewScore:      newWinnerScore,
				Reason:        models.TransactionReasonWin,
			},
			{
				PhotoID:       loserID,
				VoteID:        vote.ID,
				Delta:         -delta,
				PreviousScore: loser.Score,
				NewScore:      newLoserScore,
				Reason:        models.TransactionReasonLoss,
			},
		}
		if err := tx.Create(&transactions).Error; err != nil {
			return fmt.Errorf("failed to create score transactions: %w", err)
		}

		result = VoteResult{
			VoteID:         vote.ID,
			AppliedDelta:   delta,
			NewWinnerScore: newWinnerScore,
			NewLoserScore:  newLoserScore,
			MutualTags:     winner.MutualTags(loser),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// applyScoreUpdate writes a photo's new score and counters, guarded by the
// previously read score.
func applyScoreUpdate(tx *gorm.DB, photoID string, readScore, newScore int, outcomeColumn string) error {
	res := tx.Model(&models.Photo{}).
		Where("id = ? AND score = ?", photoID, readScore).
		Updates(map[string]interface{}{
			"score":       newScore,
			outcomeColumn: gorm.Expr(outcomeColumn+" + 1"),
			"matches":     gorm.Expr("matches + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update photo %s: %w", photoID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("photo %s score moved concurrently: %w", photoID, models.ErrConflict)
	}
	return nil
}

// UpsertTagStats applies the tag-level rating update for every mutual tag of
// a finished match. Runs after the main vote transaction commits and is
// best-effort: a crash in between leaves tag stats briefly behind the global
// score, which the model tolerates. Accounting is symmetric: each side's own
// previous counters feed its update.
func (r *VoteRepository) UpsertTagStats(winnerID, loserID string, mutualTags []string) error {
	for _, tag := range mutualTags {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			winnerStat, err := loadTagStat(tx, winnerID, tag)
			if err != nil {
				return err
			}
			loserStat, err := loadTagStat(tx, loserID, tag)
			if err != nil {
				return err
			}

			_, newWinnerScore, newLoserScore := elo.Apply(winnerStat.Score, loserStat.Score)

			winnerStat.Score = newWinnerScore
			winnerStat.Wins++
			winnerStat.Matches++
			loserStat.Score = newLoserScore
			loserStat.Losses++
			loserStat.Matches++

			for _, stat := range []*models.PhotoTagStat{winnerStat, loserStat} {
				err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "photo_id"}, {Name: "tag"}},
					DoUpdates: clause.Assignments(map[string]interface{}{
						"score":   stat.Score,
						"wins":    stat.Wins,
						"losses":  stat.Losses,
						"matches": stat.Matches,
					}),
				}).Create(stat).Error
				if err != nil {
					return fmt.Errorf("failed to upsert tag stat %s/%s: %w", stat.PhotoID, tag, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// loadTagStat fetches a photo's stat row for a tag, or a fresh default-score
// row when none exists yet.
func loadTagStat(tx *gorm.DB, photoID, tag string) (*models.PhotoTagStat, error) {
	var stat models.PhotoTagStat
	err := tx.Where("photo_id = ? AND tag = ?", photoID, tag).First(&stat).Error
	if err == nil {
		return &stat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load tag stat %s/%s: %w", photoID, tag, err)
	}
	return &models.PhotoTagStat{
		PhotoID: photoID,
		Tag:     tag,
		Score:   models.DefaultScore,
	}, nil
}

// GetTransactionsByPhoto returns a photo's audit trail, newest first.
func (r *VoteRepository) GetTransactionsByPhoto(photoID string, limit int) ([]models.ScoreTransaction, error) {
	var transactions []models.ScoreTransaction
	query := r.db.Where("photo_id = ?", photoID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions for photo %s: %w", photoID, err)
	}
	return transactions, nil
}

// CountVotesByVoter returns how many votes a user has cast.
func (r *VoteRepository) CountVotesByVoter(voterID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).Where("voter_id = ?", voterID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for voter %s: %w", voterID, err)
	}
	return count, nil
}
