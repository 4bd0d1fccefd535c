// Package energy implements the vote-rate-limiting energy gate.
package energy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// Repository interface for energy balance operations.
type Repository interface {
	Consume(userID string, cost, defaultMax int, regen time.Duration) (bool, *repository.EnergyState, error)
	Add(userID string, amount, defaultMax int, regen time.Duration) (*repository.EnergyState, error)
	Sync(userID string, defaultMax int, regen time.Duration) (*repository.EnergyState, error)
}

// Result is the gate's answer to a consume/sync/add call.
type Result struct {
	Granted   bool `json:"success"`
	Energy    int  `json:"energy"`
	MaxEnergy int  `json:"max_energy"`
}

// Service is the energy gate for authenticated users. Anonymous users are
// approximated client-side by a fixed non-regenerating counter and never
// reach this service; that weaker gate is an accepted product trade-off, not
// a security boundary.
type Service struct {
	repo Repository
	cfg  config.EnergyConfig
	log  *logger.Logger
}

// NewService creates a new energy gate with concrete dependencies.
func NewService(repo *repository.EnergyRepository, cfg config.EnergyConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// NewServiceWithInterfaces creates a new energy gate with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, cfg config.EnergyConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// TryConsume authorizes one vote attempt. A denied attempt is a regular
// result (Granted=false), not an error. A conditional-write conflict from a
// concurrent consume is retried once transparently.
func (s *Service) TryConsume(ctx context.Context, userID string, cost int) (*Result, error) {
	if cost <= 0 {
		cost = 1
	}

	granted, state, err := s.repo.Consume(userID, cost, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	if errors.Is(err, models.ErrConflict) {
		s.log.Debug().Str("user_id", userID).Msg("Energy consume conflicted, retrying")
		granted, state, err = s.repo.Consume(userID, cost, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	}
	if err != nil {
		return nil, fmt.Errorf("energy consume failed: %w", err)
	}

	return &Result{Granted: granted, Energy: state.Current, MaxEnergy: state.Max}, nil
}

// Add credits bonus energy (the upload reward). The balance may exceed the
// capacity afterwards; the over-cap surplus is kept but stops regeneration.
func (s *Service) Add(ctx context.Context, userID string, amount int) (*Result, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bonus amount must be positive")
	}

	state, err := s.repo.Add(userID, amount, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	if errors.Is(err, models.ErrConflict) {
		state, err = s.repo.Add(userID, amount, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	}
	if err != nil {
		return nil, fmt.Errorf("energy credit failed: %w", err)
	}

	return &Result{Granted: true, Energy: state.Current, MaxEnergy: state.Max}, nil
}

// Sync returns the regenerated balance without consuming.
func (s *Service) Sync(ctx context.Context, userID string) (*Result, error) {
	state, err := s.repo.Sync(userID, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	if errors.Is(err, models.ErrConflict) {
		state, err = s.repo.Sync(userID, s.cfg.MaxEnergy, s.cfg.RegenDuration())
	}
	if err != nil {
		return nil, fmt.Errorf("energy sync failed: %w", err)
	}

	return &Result{Granted: true, Energy: state.Current, MaxEnergy: state.Max}, nil
}
