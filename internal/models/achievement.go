package models

import (
	"strings"
	"time"
)

// Achievement represents an unlockable badge in the static catalog.
type Achievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Icon          string    `gorm:"size:50" json:"icon"`
	CriteriaType  string    `gorm:"size:100;not null" json:"criteria_type"`
	CriteriaValue int       `gorm:"not null" json:"criteria_value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Achievement model.
func (Achievement) TableName() string {
	return "achievements"
}

// Achievement criteria types. TagWinCountPrefix is followed by the tag label,
// e.g. "tag_win_count:Anime".
const (
	CriteriaUploadCount      = "upload_count"
	CriteriaMatchCount       = "match_count"
	CriteriaScoreThreshold   = "score_threshold"
	CriteriaWinRateThreshold = "win_rate_threshold"
	CriteriaTagWinPrefix     = "tag_win_count:"
)

// TagWinCriteriaTag returns the tag label of a tag_win_count criteria, or
// false when the criteria is of another type.
func (a *Achievement) TagWinCriteriaTag() (string, bool) {
	if strings.HasPrefix(a.CriteriaType, CriteriaTagWinPrefix) {
		return strings.TrimPrefix(a.CriteriaType, CriteriaTagWinPrefix), true
	}
	return "", false
}

// UserAchievement records that a user unlocked an achievement.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        string      `gorm:"size:36;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	EarnedAt      time.Time   `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
