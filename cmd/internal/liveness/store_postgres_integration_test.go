package liveness

import (
	"context"
	"os"
	"testing"
	"time"

	"vigil/cmd/internal/ids"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests are enabled when VIGIL_DATABASE_URL is set.
// They create the vigil schema if missing and clean up their own rows.

func mustPGXPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("VIGIL_DATABASE_URL")
	if dbURL == "" {
		t.Skip("VIGIL_DATABASE_URL is not set; skipping Postgres integration test")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}

	for _, stmt := range []string{
		`CREATE SCHEMA IF NOT EXISTS vigil`,
		`CREATE TABLE IF NOT EXISTS vigil.sessions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			active BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			last_active_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vigil.machines (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			active BOOLEAN NOT NULL,
			last_active_at TIMESTAMPTZ NOT NULL
		)`,
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			t.Fatalf("setup: %v", err)
		}
	}

	return pool
}

func newULID(t *testing.T) string {
	t.Helper()
	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	return id
}

func insertSession(ctx context.Context, t *testing.T, pool *pgxpool.Pool, s Session) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO vigil.sessions (id, account_id, active, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.AccountID, s.Active, s.CreatedAt, s.LastActiveAt)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM vigil.sessions WHERE id = $1`, s.ID)
	})
}

func insertMachine(ctx context.Context, t *testing.T, pool *pgxpool.Pool, m Machine) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO vigil.machines (id, account_id, active, last_active_at)
		VALUES ($1, $2, $3, $4)
	`, m.ID, m.AccountID, m.Active, m.LastActiveAt)
	if err != nil {
		t.Fatalf("insert machine: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM vigil.machines WHERE id = $1`, m.ID)
	})
}

func TestPostgresStore_StaleSessionQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	st := NewPostgresStore(pool)
	now := time.Now().UTC()
	account := newULID(t)

	stale := Session{ID: newULID(t), AccountID: account, Active: true, CreatedAt: now.Add(-9 * time.Hour), LastActiveAt: now.Add(-time.Hour)}
	fresh := Session{ID: newULID(t), AccountID: account, Active: true, CreatedAt: now.Add(-time.Minute), LastActiveAt: now}
	closed := Session{ID: newULID(t), AccountID: account, Active: false, CreatedAt: now.Add(-9 * time.Hour), LastActiveAt: now.Add(-time.Hour)}
	insertSession(ctx, t, pool, stale)
	insertSession(ctx, t, pool, fresh)
	insertSession(ctx, t, pool, closed)

	contains := func(list []Session, id string) bool {
		for _, s := range list {
			if s.ID == id {
				return true
			}
		}
		return false
	}

	idle, err := st.StaleSessionsByIdle(ctx, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("StaleSessionsByIdle: %v", err)
	}
	if !contains(idle, stale.ID) || contains(idle, fresh.ID) || contains(idle, closed.ID) {
		t.Fatalf("idle query returned wrong rows")
	}

	aged, err := st.StaleSessionsByAge(ctx, now.Add(-8*time.Hour))
	if err != nil {
		t.Fatalf("StaleSessionsByAge: %v", err)
	}
	if !contains(aged, stale.ID) || contains(aged, fresh.ID) || contains(aged, closed.ID) {
		t.Fatalf("age query returned wrong rows")
	}
}

func TestPostgresStore_CloseSessionIfActive_Conditional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	st := NewPostgresStore(pool)
	now := time.Now().UTC()

	sess := Session{ID: newULID(t), AccountID: newULID(t), Active: true, CreatedAt: now.Add(-time.Hour), LastActiveAt: now.Add(-time.Hour)}
	insertSession(ctx, t, pool, sess)

	updated, err := st.CloseSessionIfActive(ctx, sess.ID)
	if err != nil {
		t.Fatalf("CloseSessionIfActive: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("first close updated=%d want=1", len(updated))
	}
	if updated[0].Active {
		t.Fatalf("returned row still active")
	}
	if !updated[0].LastActiveAt.Equal(sess.LastActiveAt) {
		t.Fatalf("last_active_at changed by close")
	}

	again, err := st.CloseSessionIfActive(ctx, sess.ID)
	if err != nil {
		t.Fatalf("CloseSessionIfActive: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second close updated=%d want=0", len(again))
	}
}

func TestPostgresStore_CloseMachineIfActive_Conditional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := mustPGXPool(ctx, t)
	defer pool.Close()

	st := NewPostgresStore(pool)
	now := time.Now().UTC()

	m := Machine{ID: newULID(t), AccountID: newULID(t), Active: true, LastActiveAt: now.Add(-time.Hour)}
	insertMachine(ctx, t, pool, m)

	stale, err := st.StaleMachines(ctx, now.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("StaleMachines: %v", err)
	}
	found := false
	for _, got := range stale {
		if got.ID == m.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("stale machine not returned")
	}

	updated, err := st.CloseMachineIfActive(ctx, m.ID)
	if err != nil {
		t.Fatalf("CloseMachineIfActive: %v", err)
	}
	if len(updated) != 1 || updated[0].Active {
		t.Fatalf("first close updated=%v", updated)
	}

	again, err := st.CloseMachineIfActive(ctx, m.ID)
	if err != nil {
		t.Fatalf("CloseMachineIfActive: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second close updated=%d want=0", len(again))
	}
}
