package liveness

import "time"

// CloseReason classifies why the reaper closed an entity.
// Reasons are log-only: they are never persisted on the row.
type CloseReason string

const (
	// ReasonIdleTimeout means the idle window elapsed since last activity.
	ReasonIdleTimeout CloseReason = "idle-timeout"
	// ReasonMaxDuration means the session's total lifetime window elapsed.
	ReasonMaxDuration CloseReason = "max-duration-reached"
)

// SessionIdleExpired reports whether lastActiveAt <= now - idleTimeout.
// The boundary instant counts as expired.
func SessionIdleExpired(lastActiveAt, now time.Time, idleTimeout time.Duration) bool {
	return !lastActiveAt.After(now.Add(-idleTimeout))
}

// SessionDurationExpired reports whether createdAt <= now - maxDuration.
func SessionDurationExpired(createdAt, now time.Time, maxDuration time.Duration) bool {
	return !createdAt.After(now.Add(-maxDuration))
}

// MachineIdleExpired reports whether lastActiveAt <= now - idleTimeout.
// This is the only policy that applies to machines.
func MachineIdleExpired(lastActiveAt, now time.Time, idleTimeout time.Duration) bool {
	return !lastActiveAt.After(now.Add(-idleTimeout))
}

// StaleSession is a session snapshot paired with its close reason.
type StaleSession struct {
	Session
	Reason CloseReason
}

// MergeStaleSessions merges the idle-expired and duration-expired candidate
// lists into one set keyed by session id, at most one entry per id.
//
// The first-seen snapshot wins (idle list first, then aged list), and the
// output preserves first-seen order so processing stays deterministic.
// The reason is recomputed from the retained snapshot rather than taken
// from the list it arrived in: a session that qualifies under both policies
// is classified as idle-timeout because the idle predicate is tested first.
func MergeStaleSessions(idle, aged []Session, now time.Time, idleTimeout time.Duration) []StaleSession {
	seen := make(map[string]struct{}, len(idle)+len(aged))
	out := make([]StaleSession, 0, len(idle)+len(aged))

	add := func(s Session) {
		if _, ok := seen[s.ID]; ok {
			return
		}
		seen[s.ID] = struct{}{}

		reason := ReasonMaxDuration
		if SessionIdleExpired(s.LastActiveAt, now, idleTimeout) {
			reason = ReasonIdleTimeout
		}
		out = append(out, StaleSession{Session: s, Reason: reason})
	}

	for _, s := range idle {
		add(s)
	}
	for _, s := range aged {
		add(s)
	}

	return out
}
