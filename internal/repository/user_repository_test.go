package repository

import (
	"errors"
	"testing"

	"github.com/beautypk/photo-arena/internal/models"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, db, "alice")

	user, err := repo.GetByID("alice")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Unexpected user: %+v", user)
	}

	_, err = repo.GetByID("ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_EnsureExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	created, err := repo.EnsureExists("alice", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if created.ID != "alice" {
		t.Errorf("Unexpected user: %+v", created)
	}

	// A second call must not overwrite the existing row.
	again, err := repo.EnsureExists("alice", "other@example.com", "Other")
	if err != nil {
		t.Fatalf("EnsureExists on existing user failed: %v", err)
	}
	if again.Email != "alice@example.com" || again.DisplayName != "Alice" {
		t.Errorf("EnsureExists overwrote existing row: %+v", again)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 user row, got %d", count)
	}
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	users, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}
