// Package models defines domain models for the photo arena.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultScore is the rating every photo (and tag sub-rating) starts at.
const DefaultScore = 1000

// Photo represents an uploaded photo competing in the arena.
type Photo struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"size:36;not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	URL       string     `gorm:"type:text;not null" json:"url"`
	Score     int        `gorm:"not null;default:1000;index" json:"score"`
	Wins      int        `gorm:"not null;default:0" json:"wins"`
	Losses    int        `gorm:"not null;default:0" json:"losses"`
	Matches   int        `gorm:"not null;default:0;index" json:"matches"`
	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	Tags      []PhotoTag `gorm:"foreignKey:PhotoID" json:"tags,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Photo model.
func (Photo) TableName() string {
	return "photos"
}

// BeforeCreate assigns a UUID when none was provided.
func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TagNames returns the photo's tag labels.
func (p *Photo) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// MutualTags returns the tags present on both photos.
func (p *Photo) MutualTags(other *Photo) []string {
	set := make(map[string]struct{}, len(other.Tags))
	for _, t := range other.Tags {
		set[t.Tag] = struct{}{}
	}
	var mutual []string
	for _, t := range p.Tags {
		if _, ok := set[t.Tag]; ok {
			mutual = append(mutual, t.Tag)
		}
	}
	return mutual
}

// PhotoTag is a category label carried by a photo.
type PhotoTag struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	PhotoID string `gorm:"size:36;not null;uniqueIndex:idx_photo_tag" json:"-"`
	Tag     string `gorm:"size:100;not null;uniqueIndex:idx_photo_tag;index" json:"tag"`
}

// TableName specifies the table name for PhotoTag model.
func (PhotoTag) TableName() string {
	return "photo_tags"
}

// PhotoTagStat mirrors a photo's rating within a single tag. Rows are created
// lazily on the first match where both photos carry the tag.
type PhotoTagStat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PhotoID   string    `gorm:"size:36;not null;uniqueIndex:idx_photo_tag_stat" json:"photo_id"`
	Tag       string    `gorm:"size:100;not null;uniqueIndex:idx_photo_tag_stat" json:"tag"`
	Score     int       `gorm:"not null;default:1000" json:"score"`
	Wins      int       `gorm:"not null;default:0" json:"wins"`
	Losses    int       `gorm:"not null;default:0" json:"losses"`
	Matches   int       `gorm:"not null;default:0" json:"matches"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for PhotoTagStat model.
func (PhotoTagStat) TableName() string {
	return "photo_tag_stats"
}
