package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beautypk/photo-arena/internal/models"
)

// UserRepository handles the local mirror of externally managed identities.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// EnsureExists creates the local mirror row for an identity the upstream
// gateway vouched for. Repairs the case where the identity platform's
// provisioning hook never fired.
func (r *UserRepository) EnsureExists(id, email, displayName string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", id, err)
	}

	user = models.User{ID: id, Email: email, DisplayName: displayName}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", id, err)
	}
	return &user, nil
}

// List retrieves all users.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
