package liveness

import (
	"context"
	"encoding/json"
	"time"

	"vigil/cmd/internal/ids"
	v1 "vigil/contracts/presence/v1"
)

// Publisher delivers presence envelopes to the recipients of one account.
//
// Delivery is ephemeral: best-effort to currently-connected recipients,
// no buffering, no replay. A recipient that is offline at emission time
// simply misses the event.
type Publisher interface {
	Publish(ctx context.Context, targetAccountID string, scope v1.DeliveryScope, env v1.Envelope) error
}

// Emitter builds presence payloads for reaper-driven transitions and
// publishes them with account-local scope.
type Emitter struct {
	pub Publisher
	now func() time.Time
}

// NewEmitter constructs an Emitter. now may be nil (defaults to time.Now).
func NewEmitter(pub Publisher, now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	return &Emitter{pub: pub, now: now}
}

// SessionClosed publishes a session_activity event for a session the
// caller just closed. s must be the pre-close snapshot so the payload
// carries the last activity instant observed before the transition.
func (e *Emitter) SessionClosed(ctx context.Context, s Session) error {
	env, err := e.envelope(v1.TypeSessionActivity, v1.SessionActivityPayload{
		SessionID:    s.ID,
		Active:       false,
		LastActiveAt: s.LastActiveAt.UnixMilli(),
		Foreground:   false,
	})
	if err != nil {
		return err
	}
	return e.pub.Publish(ctx, s.AccountID, v1.ScopeAccountOnly, env)
}

// MachineClosed publishes a machine_activity event for a machine the
// caller just closed. m must be the pre-close snapshot.
func (e *Emitter) MachineClosed(ctx context.Context, m Machine) error {
	env, err := e.envelope(v1.TypeMachineActivity, v1.MachineActivityPayload{
		MachineID:    m.ID,
		Active:       false,
		LastActiveAt: m.LastActiveAt.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return e.pub.Publish(ctx, m.AccountID, v1.ScopeAccountOnly, env)
}

func (e *Emitter) envelope(typ string, payload any) (v1.Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return v1.Envelope{}, err
	}

	now := e.now().UTC()
	id, err := ids.NewULID(now)
	if err != nil {
		return v1.Envelope{}, err
	}

	return v1.Envelope{
		V:       v1.Version,
		Type:    typ,
		ID:      id,
		TS:      now,
		Payload: raw,
	}, nil
}
