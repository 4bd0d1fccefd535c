package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beautypk/photo-arena/internal/models"
)

// EnergyRepository handles the per-user energy balance. All balance math runs
// inside a transaction with conditional writes so concurrent votes from the
// same user cannot double-spend.
type EnergyRepository struct {
	db *DB
}

// NewEnergyRepository creates a new energy repository.
func NewEnergyRepository(db *DB) *EnergyRepository {
	return &EnergyRepository{db: db}
}

// EnergyState is a synced balance snapshot.
type EnergyState struct {
	Current int
	Max     int
}

// Consume regenerates the balance lazily and decrements it by cost in one
// atomic unit. Returns granted=false when the synced balance cannot cover the
// cost. Returns models.ErrConflict when a concurrent consume raced the
// conditional write; callers retry once.
func (r *EnergyRepository) Consume(userID string, cost, defaultMax int, regen time.Duration) (granted bool, state *EnergyState, err error) {
	now := time.Now()
	err = r.db.Transaction(func(tx *gorm.DB) error {
		row, err := getOrCreateEnergy(tx, userID, defaultMax, now)
		if err != nil {
			return err
		}

		synced, syncedAt := regenerate(row, regen, now)
		if synced < cost {
			granted = false
			state = &EnergyState{Current: synced, Max: row.Max}
			// Persist the regenerated balance even on denial so the next
			// sync starts from the right point.
			return conditionalEnergyUpdate(tx, row, synced, syncedAt)
		}

		granted = true
		state = &EnergyState{Current: synced - cost, Max: row.Max}
		return conditionalEnergyUpdate(tx, row, synced-cost, syncedAt)
	})
	if err != nil {
		return false, nil, err
	}
	return granted, state, nil
}

// Add credits bonus energy on top of the synced balance. The result may
// exceed the capacity; over-cap balances are preserved and simply stop
// regenerating.
func (r *EnergyRepository) Add(userID string, amount, defaultMax int, regen time.Duration) (*EnergyState, error) {
	now := time.Now()
	var state *EnergyState
	err := r.db.Transaction(func(tx *gorm.DB) error {
		row, err := getOrCreateEnergy(tx, userID, defaultMax, now)
		if err != nil {
			return err
		}
		synced, syncedAt := regenerate(row, regen, now)
		state = &EnergyState{Current: synced + amount, Max: row.Max}
		return conditionalEnergyUpdate(tx, row, synced+amount, syncedAt)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Sync regenerates and persists the balance without consuming.
func (r *EnergyRepository) Sync(userID string, defaultMax int, regen time.Duration) (*EnergyState, error) {
	now := time.Now()
	var state *EnergyState
	err := r.db.Transaction(func(tx *gorm.DB) error {
		row, err := getOrCreateEnergy(tx, userID, defaultMax, now)
		if err != nil {
			return err
		}
		synced, syncedAt := regenerate(row, regen, now)
		state = &EnergyState{Current: synced, Max: row.Max}
		if synced == row.Current && syncedAt.Equal(row.LastSyncAt) {
			return nil
		}
		return conditionalEnergyUpdate(tx, row, synced, syncedAt)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// getOrCreateEnergy loads a user's energy row, creating one seeded at full
// capacity on first touch.
func getOrCreateEnergy(tx *gorm.DB, userID string, defaultMax int, now time.Time) (*models.UserEnergy, error) {
	var row models.UserEnergy
	err := tx.First(&row, "user_id = ?", userID).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load energy for user %s: %w", userID, err)
	}

	row = models.UserEnergy{
		UserID:     userID,
		Current:    defaultMax,
		Max:        defaultMax,
		LastSyncAt: now,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create energy for user %s: %w", userID, err)
	}
	return &row, nil
}

// regenerate computes the lazily regenerated balance. Whole units only; the
// fractional remainder stays encoded in the returned sync timestamp so no
// elapsed time is lost. Over-cap balances never regenerate further.
func regenerate(row *models.UserEnergy, regen time.Duration, now time.Time) (int, time.Time) {
	if row.Current >= row.Max {
		return row.Current, now
	}
	if regen <= 0 {
		return row.Current, row.LastSyncAt
	}

	units := int(now.Sub(row.LastSyncAt) / regen)
	if units <= 0 {
		return row.Current, row.LastSyncAt
	}

	current := row.Current + units
	if current >= row.Max {
		return row.Max, now
	}
	return current, row.LastSyncAt.Add(time.Duration(units) * regen)
}

// conditionalEnergyUpdate writes the new balance guarded by the values read
// at the start of the transaction.
func conditionalEnergyUpdate(tx *gorm.DB, row *models.UserEnergy, newCurrent int, newSyncAt time.Time) error {
	res := tx.Model(&models.UserEnergy{}).
		Where("user_id = ? AND current = ? AND last_sync_at = ?", row.UserID, row.Current, row.LastSyncAt).
		Updates(map[string]interface{}{
			"current":      newCurrent,
			"last_sync_at": newSyncAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update energy for user %s: %w", row.UserID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("energy for user %s moved concurrently: %w", row.UserID, models.ErrConflict)
	}
	return nil
}
