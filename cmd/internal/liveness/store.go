package liveness

import (
	"context"
	"time"
)

// Store abstracts persistence for session and machine liveness state.
//
// Staleness queries select rows with active = true and the relevant
// timestamp at or before the cutoff. The conditional closes are the
// synchronization linchpin: they must be implemented as a single atomic
// compare-and-set at the store (not read-then-write), flip active to false
// only while it is still true, and return the updated rows. An empty
// result means another writer got there first and is not an error.
type Store interface {
	// StaleSessionsByIdle returns active sessions with last_active_at <= cutoff.
	StaleSessionsByIdle(ctx context.Context, cutoff time.Time) ([]Session, error)

	// StaleSessionsByAge returns active sessions with created_at <= cutoff.
	StaleSessionsByAge(ctx context.Context, cutoff time.Time) ([]Session, error)

	// StaleMachines returns active machines with last_active_at <= cutoff.
	StaleMachines(ctx context.Context, cutoff time.Time) ([]Machine, error)

	// CloseSessionIfActive sets active=false iff the session is still active,
	// returning the updated rows (empty when the close lost the race).
	CloseSessionIfActive(ctx context.Context, sessionID string) ([]Session, error)

	// CloseMachineIfActive is the machine analogue of CloseSessionIfActive.
	CloseMachineIfActive(ctx context.Context, machineID string) ([]Machine, error)
}
