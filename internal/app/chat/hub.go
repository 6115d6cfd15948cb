/*
Package chat contains the core logic for live connections.

This file defines the Hub, the registry of currently open connections. The Hub is
the only shared mutable resource of the live path: every mutation is serialized
behind its mutex, and each mutation is followed by a full presence broadcast
reflecting the post-mutation registry.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
)

// Hub holds the set of currently open connections and broadcasts presence.
type Hub struct {
	// mu serializes all registry mutations and reads.
	mu sync.Mutex

	// clients holds registered connections in registration order. Duplicates of
	// one user (multiple devices) are distinct entries.
	clients []*Client

	pingPeriod   time.Duration
	deathTimeout time.Duration

	// newTimer creates heartbeat timers; replaced in tests to simulate time.
	newTimer timerFactory

	logger zerolog.Logger
}

// NewHub constructs an empty registry with production heartbeat timings.
func NewHub() *Hub {
	return &Hub{
		pingPeriod:   pingPeriod,
		deathTimeout: deathTimeout,
		newTimer:     stdTimerFactory,
		logger:       logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Register adds the connection to the registry, starts its heartbeat, and
// broadcasts a presence snapshot that includes it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients = append(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	c.heartbeat.Start()

	h.logger.Info().
		Str("connection_id", c.id).
		Int("total_connections", total).
		Msg("Connection registered")

	h.BroadcastPresence()
}

// Unregister removes the connection, stops its heartbeat timers, closes the
// transport, and broadcasts a presence snapshot that excludes it. Idempotent:
// the teardown side effects run only for the call that actually removed it.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := false
	for i, existing := range h.clients {
		if existing == c {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			removed = true
			break
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !removed {
		return
	}

	// Timers must be gone before the connection object is discarded.
	c.heartbeat.Stop()
	c.close()

	h.logger.Info().
		Str("connection_id", c.id).
		Int("total_connections", total).
		Msg("Connection unregistered")

	h.BroadcastPresence()
}

// Snapshot returns the identities of all registered connections at a consistent
// point in time, in registration order. Unauthenticated connections appear with
// null identity fields.
func (h *Hub) Snapshot() []PresenceEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() []PresenceEntry {
	entries := make([]PresenceEntry, 0, len(h.clients))
	for _, c := range h.clients {
		var entry PresenceEntry
		if c.identity != nil {
			entry.UserID = &c.identity.ID
			entry.UserName = &c.identity.UserName
		}
		entries = append(entries, entry)
	}
	return entries
}

// ConnectionsFor returns every registered connection authenticated as the given
// user. Zero, one, or many: multi-device fan-out sends to all of them.
func (h *Hub) ConnectionsFor(userID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matches []*Client
	for _, c := range h.clients {
		if c.identity != nil && c.identity.ID == userID {
			matches = append(matches, c)
		}
	}
	return matches
}

// BroadcastPresence pushes the current online snapshot to every open connection.
// The snapshot and the target list are taken under one lock acquisition, so the
// frame always reflects the registry state after the triggering mutation.
func (h *Hub) BroadcastPresence() {
	h.mu.Lock()
	entries := h.snapshotLocked()
	targets := make([]*Client, len(h.clients))
	copy(targets, h.clients)
	h.mu.Unlock()

	frame, err := json.Marshal(presenceFrame{Online: entries})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal presence frame")
		return
	}

	for _, c := range targets {
		c.enqueue(frame)
	}
}
