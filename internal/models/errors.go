package models

import "errors"

// Domain error taxonomy. Services wrap these with fmt.Errorf("...: %w", err)
// and handlers unwrap them with errors.Is to pick status codes.
var (
	// ErrNotFound indicates a referenced photo or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientCandidates indicates the matchmaking pool holds fewer
	// than two eligible photos even after all fallbacks.
	ErrInsufficientCandidates = errors.New("insufficient candidates")

	// ErrEnergyExhausted indicates the energy gate denied a vote. Expected
	// steady-state condition, not a failure.
	ErrEnergyExhausted = errors.New("energy exhausted")

	// ErrConflict indicates a concurrent update invalidated a previously
	// read score. Callers retry the whole unit once before surfacing it.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrUpstream indicates a transient failure in a backing service.
	ErrUpstream = errors.New("upstream service error")
)
