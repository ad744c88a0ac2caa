// Package v1 defines the vigil presence protocol v1 contract.
//
// This package is intentionally stable and dependency-light.
// It is shared between the server and clients to keep the wire format authoritative.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the protocol version identifier embedded into every envelope.
const Version = "v1"

// Type constants (wire-stable).
const (
	// TypeSessionActivity reports a session activity transition (server -> client).
	TypeSessionActivity = "session_activity"
	// TypeMachineActivity reports a machine activity transition (server -> client).
	TypeMachineActivity = "machine_activity"

	// TypeError is a generic error envelope (server -> client).
	TypeError = "error"
)

// DeliveryScope restricts which recipients may observe an envelope.
type DeliveryScope string

// ScopeAccountOnly delivers only to recipients currently connected for the
// target account. There is no broadcast scope: presence events never cross
// account boundaries.
const ScopeAccountOnly DeliveryScope = "account-local-only"

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs strict structural validation for an Envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}

	switch e.Type {
	case TypeSessionActivity,
		TypeMachineActivity,
		TypeError:
		return nil
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// ---- Payloads ----

// SessionActivityPayload reports a session's activity state.
//
// LastActiveAt is unix milliseconds and carries the last activity instant
// observed before the transition. Foreground is reserved for
// client-originated updates; server-originated closes always send false.
type SessionActivityPayload struct {
	SessionID    string `json:"session_id"`
	Active       bool   `json:"active"`
	LastActiveAt int64  `json:"last_active_at"`
	Foreground   bool   `json:"foreground"`
}

// MachineActivityPayload reports a machine's activity state.
// LastActiveAt is unix milliseconds.
type MachineActivityPayload struct {
	MachineID    string `json:"machine_id"`
	Active       bool   `json:"active"`
	LastActiveAt int64  `json:"last_active_at"`
}

// ErrorPayload is a generic error response payload.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
