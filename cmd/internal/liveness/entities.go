package liveness

import "time"

// Session mirrors the vigil.sessions row observed by the reaper.
//
// CreatedAt is immutable. LastActiveAt is bumped by activity trackers
// outside this package and never decreases while the session is active.
// The reaper is the only writer here and it only ever writes active=false;
// a closed session never becomes active again without re-creation.
type Session struct {
	ID           string
	AccountID    string
	Active       bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Machine mirrors the vigil.machines row.
// Machines have no lifetime policy; only the idle policy applies.
type Machine struct {
	ID           string
	AccountID    string
	Active       bool
	LastActiveAt time.Time
}
