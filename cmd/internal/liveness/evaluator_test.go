package liveness

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestSessionIdleExpired(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		lastActiveAt time.Time
		want         bool
	}{
		{name: "just active", lastActiveAt: testNow.Add(-1 * time.Second), want: false},
		{name: "inside window", lastActiveAt: testNow.Add(-29 * time.Minute), want: false},
		{name: "exactly at boundary", lastActiveAt: testNow.Add(-30 * time.Minute), want: true},
		{name: "past boundary", lastActiveAt: testNow.Add(-31 * time.Minute), want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SessionIdleExpired(tc.lastActiveAt, testNow, DefaultSessionIdleTimeout)
			if got != tc.want {
				t.Fatalf("SessionIdleExpired(%v)=%v want=%v", tc.lastActiveAt, got, tc.want)
			}
		})
	}
}

func TestSessionDurationExpired(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{name: "fresh", createdAt: testNow.Add(-1 * time.Hour), want: false},
		{name: "exactly at boundary", createdAt: testNow.Add(-8 * time.Hour), want: true},
		{name: "ancient", createdAt: testNow.Add(-48 * time.Hour), want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SessionDurationExpired(tc.createdAt, testNow, DefaultSessionMaxDuration)
			if got != tc.want {
				t.Fatalf("SessionDurationExpired(%v)=%v want=%v", tc.createdAt, got, tc.want)
			}
		})
	}
}

func TestMachineIdleExpired(t *testing.T) {
	t.Parallel()

	if MachineIdleExpired(testNow.Add(-9*time.Minute), testNow, DefaultMachineIdleTimeout) {
		t.Fatalf("machine active 9m ago must not be expired")
	}
	if !MachineIdleExpired(testNow.Add(-10*time.Minute), testNow, DefaultMachineIdleTimeout) {
		t.Fatalf("machine at the 10m boundary must be expired")
	}
}

func TestMergeStaleSessions_DedupAndReason(t *testing.T) {
	t.Parallel()

	// Expired under both policies: idle for 45m and alive for 9h.
	both := Session{
		ID:           "s-both",
		AccountID:    "acct-1",
		Active:       true,
		CreatedAt:    testNow.Add(-9 * time.Hour),
		LastActiveAt: testNow.Add(-45 * time.Minute),
	}
	// Aged out but recently active.
	agedOnly := Session{
		ID:           "s-aged",
		AccountID:    "acct-1",
		Active:       true,
		CreatedAt:    testNow.Add(-9 * time.Hour),
		LastActiveAt: testNow.Add(-10 * time.Second),
	}
	// Idle only.
	idleOnly := Session{
		ID:           "s-idle",
		AccountID:    "acct-2",
		Active:       true,
		CreatedAt:    testNow.Add(-1 * time.Hour),
		LastActiveAt: testNow.Add(-40 * time.Minute),
	}

	merged := MergeStaleSessions(
		[]Session{idleOnly, both},
		[]Session{both, agedOnly},
		testNow,
		DefaultSessionIdleTimeout,
	)

	if len(merged) != 3 {
		t.Fatalf("merged len=%d want=3", len(merged))
	}

	byID := make(map[string]StaleSession, len(merged))
	for _, c := range merged {
		if _, dup := byID[c.ID]; dup {
			t.Fatalf("duplicate candidate: %s", c.ID)
		}
		byID[c.ID] = c
	}

	if got := byID["s-both"].Reason; got != ReasonIdleTimeout {
		t.Fatalf("dual-policy session reason=%q want=%q", got, ReasonIdleTimeout)
	}
	if got := byID["s-aged"].Reason; got != ReasonMaxDuration {
		t.Fatalf("aged session reason=%q want=%q", got, ReasonMaxDuration)
	}
	if got := byID["s-idle"].Reason; got != ReasonIdleTimeout {
		t.Fatalf("idle session reason=%q want=%q", got, ReasonIdleTimeout)
	}

	// First-seen order: idle list first, then aged-list newcomers.
	wantOrder := []string{"s-idle", "s-both", "s-aged"}
	for i, id := range wantOrder {
		if merged[i].ID != id {
			t.Fatalf("order[%d]=%s want=%s", i, merged[i].ID, id)
		}
	}
}

func TestMergeStaleSessions_ReasonIndependentOfListOrder(t *testing.T) {
	t.Parallel()

	both := Session{
		ID:           "s-both",
		AccountID:    "acct-1",
		Active:       true,
		CreatedAt:    testNow.Add(-9 * time.Hour),
		LastActiveAt: testNow.Add(-45 * time.Minute),
	}

	// Discovered through the aged query only: the reason must still come
	// from re-testing the idle predicate against the snapshot.
	merged := MergeStaleSessions(nil, []Session{both}, testNow, DefaultSessionIdleTimeout)
	if len(merged) != 1 {
		t.Fatalf("merged len=%d want=1", len(merged))
	}
	if merged[0].Reason != ReasonIdleTimeout {
		t.Fatalf("reason=%q want=%q", merged[0].Reason, ReasonIdleTimeout)
	}
}
