package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	v1 "vigil/contracts/presence/v1"
)

// ErrInvalidScope is returned when a publish requests a delivery scope the
// hub does not support. Account-local delivery is the only scope.
var ErrInvalidScope = errors.New("realtime: invalid delivery scope")

// Hub owns the in-memory registry of connected recipients, grouped by
// account. It is the concrete Publisher behind the reaper's presence
// events: fanout never crosses an account boundary.
//
// Concurrency guarantees:
// - Register/Unregister are safe under concurrent Publish.
// - Publish never blocks (drops under backpressure).
// - Publish is panic-safe because Client.Send is never closed by the server.
type Hub struct {
	log *slog.Logger

	mu       sync.RWMutex
	accounts map[string]map[string]*Client
}

// NewHub constructs a Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:      log,
		accounts: make(map[string]map[string]*Client),
	}
}

// Register adds a client to its account's recipient set.
func (h *Hub) Register(client *Client) {
	if h == nil || client == nil || client.AccountID == "" || client.ClientID == "" {
		return
	}

	h.mu.Lock()
	clients, ok := h.accounts[client.AccountID]
	if !ok {
		clients = make(map[string]*Client)
		h.accounts[client.AccountID] = clients
	}
	clients[client.ClientID] = client
	h.mu.Unlock()

	h.log.Info("hub.client.register", "account_id", client.AccountID, "client_id", client.ClientID)
}

// Unregister removes a client and signals its shutdown.
func (h *Hub) Unregister(accountID, clientID string) {
	if h == nil || accountID == "" || clientID == "" {
		return
	}

	var cl *Client

	h.mu.Lock()
	if clients, ok := h.accounts[accountID]; ok {
		cl = clients[clientID]
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(h.accounts, accountID)
		}
	}
	h.mu.Unlock()

	// Signal client shutdown after removing it from the registry so a
	// concurrent publisher never holds a pointer to a torn-down client.
	if cl != nil {
		cl.Close()
	}

	h.log.Info("hub.client.unregister", "account_id", accountID, "client_id", clientID)
}

// Publish fans an envelope out to every recipient connected for the target
// account. Delivery is ephemeral and non-blocking: if a recipient queue is
// full or the client is shutting down, the envelope is dropped for that
// recipient. An account with no connected recipients is not an error.
func (h *Hub) Publish(_ context.Context, targetAccountID string, scope v1.DeliveryScope, env v1.Envelope) error {
	if scope != v1.ScopeAccountOnly {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if targetAccountID == "" {
		return errors.New("realtime: empty target account id")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cl := range h.accounts[targetAccountID] {
		select {
		case <-cl.Done():
		case cl.Send <- env:
		default:
			h.log.Warn("hub.publish.drop",
				"account_id", targetAccountID,
				"client_id", cl.ClientID,
				"type", env.Type,
			)
		}
	}
	return nil
}
