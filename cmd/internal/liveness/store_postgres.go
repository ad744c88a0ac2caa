package liveness

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (vigil.sessions, vigil.machines).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed liveness store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// StaleSessionsByIdle returns active sessions whose last activity is at or before cutoff.
func (s *PostgresStore) StaleSessionsByIdle(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, active, created_at, last_active_at
		FROM vigil.sessions
		WHERE active AND last_active_at <= $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// StaleSessionsByAge returns active sessions created at or before cutoff.
func (s *PostgresStore) StaleSessionsByAge(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, active, created_at, last_active_at
		FROM vigil.sessions
		WHERE active AND created_at <= $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// StaleMachines returns active machines whose last activity is at or before cutoff.
func (s *PostgresStore) StaleMachines(ctx context.Context, cutoff time.Time) ([]Machine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, active, last_active_at
		FROM vigil.machines
		WHERE active AND last_active_at <= $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return scanMachines(rows)
}

// CloseSessionIfActive flips active to false iff it is still true.
//
// The WHERE clause carries the compare-and-set: under concurrent reapers
// at most one UPDATE matches, so at most one caller sees a non-empty
// result for a given transition.
func (s *PostgresStore) CloseSessionIfActive(ctx context.Context, sessionID string) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE vigil.sessions
		SET active = FALSE
		WHERE id = $1 AND active
		RETURNING id, account_id, active, created_at, last_active_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// CloseMachineIfActive is the machine analogue of CloseSessionIfActive.
func (s *PostgresStore) CloseMachineIfActive(ctx context.Context, machineID string) ([]Machine, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE vigil.machines
		SET active = FALSE
		WHERE id = $1 AND active
		RETURNING id, account_id, active, last_active_at
	`, machineID)
	if err != nil {
		return nil, err
	}
	return scanMachines(rows)
}

func scanSessions(rows pgx.Rows) ([]Session, error) {
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.ID,
			&sess.AccountID,
			&sess.Active,
			&sess.CreatedAt,
			&sess.LastActiveAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMachines(rows pgx.Rows) ([]Machine, error) {
	defer rows.Close()

	var out []Machine
	for rows.Next() {
		var m Machine
		if err := rows.Scan(
			&m.ID,
			&m.AccountID,
			&m.Active,
			&m.LastActiveAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
