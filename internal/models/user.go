package models

import (
	"time"
)

// User is a thin mirror of the external identity store. The service never
// authenticates users itself; it only needs a row to hang photos, energy and
// achievements off.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Email       string    `gorm:"size:255;index" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// UserEnergy holds the vote-rate-limiting balance for one user. The balance
// regenerates lazily: it is recomputed from LastSyncAt on every read or
// consume, never by a background job.
type UserEnergy struct {
	UserID     string    `gorm:"primaryKey;size:36" json:"user_id"`
	Current    int       `gorm:"not null" json:"current"`
	Max        int       `gorm:"not null;default:10" json:"max"`
	LastSyncAt time.Time `gorm:"not null" json:"last_sync_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserEnergy model.
func (UserEnergy) TableName() string {
	return "user_energy"
}
