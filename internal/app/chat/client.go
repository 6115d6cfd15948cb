/*
Package chat contains the core logic for live connections.

This file defines the Client struct, representing one live WebSocket connection.
It manages the connection's identity, its read and write loops, and the interplay
with the heartbeat monitor.
*/
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum allowed size (in bytes) of an inbound frame. Generous because chat
	// sends may carry base64-encoded attachment bytes inline.
	maxMessageSize = 10 << 20

	// capacity of the per-connection outbound frame queue.
	sendQueueSize = 256
)

// Identity is the verified user identity of an authenticated connection.
type Identity struct {
	ID       string
	UserName string
}

// Client represents one live transport session.
type Client struct {
	// id is a process-local identifier, never persisted.
	id string

	hub   *Hub
	relay *Relay

	// underlying WebSocket connection. Nil only in tests that exercise the
	// registry without a live transport.
	conn *websocket.Conn

	// identity is set at most once, during the handshake, and never changes.
	// Nil for unauthenticated connections.
	identity *Identity

	// heartbeat drives liveness probing for this connection.
	heartbeat *Monitor

	// send queues frames waiting to be written to the connection.
	send chan []byte

	// done is closed exactly once when the connection is torn down.
	done chan struct{}

	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. A nil identity means
// the handshake could not authenticate the peer; the connection still proceeds.
func NewClient(hub *Hub, relay *Relay, conn *websocket.Conn, identity *Identity) *Client {
	id := randx.ConnectionID()

	logCtx := logx.Logger().With().Str("connection_id", id)
	if identity != nil {
		logCtx = logCtx.Str("user_id", identity.ID)
	}

	c := &Client{
		id:       id,
		hub:      hub,
		relay:    relay,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
		logger:   logCtx.Logger(),
	}

	c.heartbeat = newMonitor(hub.pingPeriod, hub.deathTimeout, hub.newTimer, c.sendPing, c.expire)

	return c
}

// Identity returns the connection's verified identity, or nil when unauthenticated.
func (c *Client) Identity() *Identity {
	return c.identity
}

// sendPing writes a ping control frame. WriteControl is safe to call concurrently
// with the write pump.
func (c *Client) sendPing() {
	if c.conn == nil {
		return
	}

	if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send liveness probe")
	}
}

// expire handles a heartbeat death: the transport is terminated, the connection
// unregistered, and a fresh presence snapshot broadcast.
func (c *Client) expire() {
	c.logger.Info().Msg("Heartbeat timed out, terminating connection")
	c.hub.Unregister(c)
}

// close tears the connection down exactly once: the done channel wakes the write
// pump and the transport close unblocks the read pump.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// enqueue queues a frame for delivery, dropping it when the connection is closed
// or its queue is full. Delivery is fire-and-forget.
func (c *Client) enqueue(frame []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame")
	}
}

// ReadPump reads frames from the connection and hands them to the relay. Inbound
// frames from one connection are processed strictly in arrival order. On exit the
// connection is unregistered, which also cancels its heartbeat timers.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(maxMessageSize)

	c.conn.SetPongHandler(func(string) error {
		c.heartbeat.PongReceived()
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly")
			}
			break
		}

		c.relay.HandleInbound(context.Background(), c, frame)
	}
}

// WritePump writes queued frames to the connection until the connection is torn down.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error().Err(err).Msg("Error writing frame")
				return
			}
		}
	}
}
