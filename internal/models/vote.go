package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is the append-only record of a single match outcome. Rows are never
// updated or deleted once written.
type Vote struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	WinnerPhotoID string    `gorm:"size:36;not null;index" json:"winner_photo_id"`
	LoserPhotoID  string    `gorm:"size:36;not null;index" json:"loser_photo_id"`
	VoterID       *string   `gorm:"size:36;index" json:"voter_id"` // nil for anonymous voters
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for Vote model.
func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate assigns a UUID when none was provided.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ScoreTransaction is the immutable audit entry for one photo's score change.
// Every vote produces exactly two: one win, one loss.
type ScoreTransaction struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	PhotoID       string    `gorm:"size:36;not null;index" json:"photo_id"`
	VoteID        string    `gorm:"size:36;not null;index" json:"vote_id"`
	Delta         int       `gorm:"not null" json:"delta"`
	PreviousScore int       `gorm:"not null" json:"previous_score"`
	NewScore      int       `gorm:"not null" json:"new_score"`
	Reason        string    `gorm:"size:10;not null" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for ScoreTransaction model.
func (ScoreTransaction) TableName() string {
	return "score_transactions"
}

// BeforeCreate assigns a UUID when none was provided.
func (t *ScoreTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Score transaction reasons.
const (
	TransactionReasonWin  = "win"
	TransactionReasonLoss = "loss"
)
