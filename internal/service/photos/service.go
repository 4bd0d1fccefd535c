// Package photos handles photo registration and ownership operations. The
// binary image itself lives in external object storage; this service only
// records the resulting URL and seeds the rating state.
package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/beautypk/photo-arena/internal/metrics"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/internal/service/energy"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// ErrNotOwner indicates a deletion attempt by someone other than the
// uploader.
var ErrNotOwner = errors.New("photo belongs to another user")

// PhotoRepository interface for photo persistence.
type PhotoRepository interface {
	Create(photo *models.Photo, tags []string) error
	GetByID(id string) (*models.Photo, error)
	ListByUser(userID string) ([]models.Photo, error)
	Delete(id string) error
	CountActive() (int64, error)
}

// UserRepository interface for identity mirroring.
type UserRepository interface {
	EnsureExists(id, email, displayName string) (*models.User, error)
}

// EnergyGate interface for the upload bonus credit.
type EnergyGate interface {
	Add(ctx context.Context, userID string, amount int) (*energy.Result, error)
}

// Service registers and manages photos.
type Service struct {
	photoRepo   PhotoRepository
	userRepo    UserRepository
	gate        EnergyGate
	uploadBonus int
	log         *logger.Logger
}

// NewService creates a new photo service with concrete dependencies.
func NewService(photoRepo *repository.PhotoRepository, userRepo *repository.UserRepository, gate *energy.Service, uploadBonus int, log *logger.Logger) *Service {
	return &Service{
		photoRepo:   photoRepo,
		userRepo:    userRepo,
		gate:        gate,
		uploadBonus: uploadBonus,
		log:         log,
	}
}

// NewServiceWithInterfaces creates a new photo service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(photoRepo PhotoRepository, userRepo UserRepository, gate EnergyGate, uploadBonus int, log *logger.Logger) *Service {
	return &Service{
		photoRepo:   photoRepo,
		userRepo:    userRepo,
		gate:        gate,
		uploadBonus: uploadBonus,
		log:         log,
	}
}

// Register records an uploaded photo at the default rating and credits the
// uploader's energy bonus. The bonus is best-effort: a failed credit does
// not unwind the photo.
func (s *Service) Register(ctx context.Context, userID, url string, tags []string) (*models.Photo, error) {
	if url == "" {
		return nil, fmt.Errorf("photo url is required")
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("at least one tag is required")
	}

	// Self-healing: the identity platform's provisioning hook can fail,
	// leaving no local row to attach the photo to.
	if _, err := s.userRepo.EnsureExists(userID, "", ""); err != nil {
		return nil, fmt.Errorf("failed to ensure user record: %w", err)
	}

	photo := &models.Photo{
		UserID:   userID,
		URL:      url,
		Score:    models.DefaultScore,
		IsActive: true,
	}
	if err := s.photoRepo.Create(photo, tags); err != nil {
		return nil, err
	}

	if s.uploadBonus > 0 {
		if _, err := s.gate.Add(ctx, userID, s.uploadBonus); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to credit upload bonus")
		}
	}

	s.refreshActiveGauge()
	return photo, nil
}

// ListByUser returns a user's photos, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Photo, error) {
	return s.photoRepo.ListByUser(userID)
}

// Delete removes a photo after verifying ownership. The vote ledger keeps
// its history.
func (s *Service) Delete(ctx context.Context, photoID, requesterID string) error {
	photo, err := s.photoRepo.GetByID(photoID)
	if err != nil {
		return err
	}
	if photo.UserID != requesterID {
		return fmt.Errorf("photo %s: %w", photoID, ErrNotOwner)
	}
	if err := s.photoRepo.Delete(photoID); err != nil {
		return err
	}
	s.refreshActiveGauge()
	return nil
}

// refreshActiveGauge republishes the matchmaking pool size. Create and
// delete are the only paths that change it.
func (s *Service) refreshActiveGauge() {
	count, err := s.photoRepo.CountActive()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to refresh active photo count")
		return
	}
	metrics.ActivePhotosCount.Set(float64(count))
}
