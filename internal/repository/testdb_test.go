package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/beautypk/photo-arena/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.UserEnergy{},
		&models.Photo{},
		&models.PhotoTag{},
		&models.PhotoTagStat{},
		&models.Vote{},
		&models.ScoreTransaction{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, id string) *models.User {
	t.Helper()

	user := &models.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: id,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestPhoto creates an active test photo with tags at the default
// score.
func createTestPhoto(t *testing.T, db *DB, id, userID string, tags ...string) *models.Photo {
	t.Helper()

	photo := &models.Photo{
		ID:       id,
		UserID:   userID,
		URL:      "https://cdn.example.com/" + id + ".jpg",
		Score:    models.DefaultScore,
		IsActive: true,
	}
	for _, tag := range tags {
		photo.Tags = append(photo.Tags, models.PhotoTag{Tag: tag})
	}
	if err := db.Create(photo).Error; err != nil {
		t.Fatalf("Failed to create test photo: %v", err)
	}
	return photo
}
