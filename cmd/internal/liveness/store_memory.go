package liveness

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a dev-only fallback when DB is not configured.
// It preserves the conditional-close contract: the active flag is flipped
// under the mutex and the updated snapshot is returned only when the flip
// actually happened.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	machines map[string]Machine
}

// NewInMemoryStore constructs an in-memory Store implementation.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]Session),
		machines: make(map[string]Machine),
	}
}

// PutSession inserts or replaces a session row (dev seeding / tests).
func (s *InMemoryStore) PutSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// PutMachine inserts or replaces a machine row (dev seeding / tests).
func (s *InMemoryStore) PutMachine(m Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[m.ID] = m
}

// TouchSession bumps last_active_at, mirroring an activity heartbeat.
func (s *InMemoryStore) TouchSession(sessionID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || !sess.Active || now.Before(sess.LastActiveAt) {
		return
	}
	sess.LastActiveAt = now
	s.sessions[sessionID] = sess
}

// StaleSessionsByIdle returns active sessions with last_active_at <= cutoff.
func (s *InMemoryStore) StaleSessionsByIdle(ctx context.Context, cutoff time.Time) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Session
	for _, sess := range s.sessions {
		if sess.Active && !sess.LastActiveAt.After(cutoff) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// StaleSessionsByAge returns active sessions with created_at <= cutoff.
func (s *InMemoryStore) StaleSessionsByAge(ctx context.Context, cutoff time.Time) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Session
	for _, sess := range s.sessions {
		if sess.Active && !sess.CreatedAt.After(cutoff) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// StaleMachines returns active machines with last_active_at <= cutoff.
func (s *InMemoryStore) StaleMachines(ctx context.Context, cutoff time.Time) ([]Machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Machine
	for _, m := range s.machines {
		if m.Active && !m.LastActiveAt.After(cutoff) {
			out = append(out, m)
		}
	}
	return out, nil
}

// CloseSessionIfActive flips active to false iff it is still true.
func (s *InMemoryStore) CloseSessionIfActive(ctx context.Context, sessionID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || !sess.Active {
		return nil, nil
	}
	sess.Active = false
	s.sessions[sessionID] = sess
	return []Session{sess}, nil
}

// CloseMachineIfActive flips active to false iff it is still true.
func (s *InMemoryStore) CloseMachineIfActive(ctx context.Context, machineID string) ([]Machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[machineID]
	if !ok || !m.Active {
		return nil, nil
	}
	m.Active = false
	s.machines[machineID] = m
	return []Machine{m}, nil
}

// SessionByID returns the current session snapshot (tests).
func (s *InMemoryStore) SessionByID(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// MachineByID returns the current machine snapshot (tests).
func (s *InMemoryStore) MachineByID(machineID string) (Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[machineID]
	return m, ok
}
