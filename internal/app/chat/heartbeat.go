/*
Package chat contains the core logic for live connections.

This file defines the Monitor, the per-connection liveness state machine. It drives
the periodic ping probe and the death timer that detects half-open transports.
*/
package chat

import (
	"sync"
	"time"
)

// LivenessState is the heartbeat state of a single connection.
type LivenessState int

const (
	// StateAlive means the connection answered its most recent probe (or none was sent yet).
	StateAlive LivenessState = iota

	// StateAwaitingPong means a probe has been sent and the death timer is armed.
	StateAwaitingPong

	// StateDead is terminal: the connection missed its probe deadline or was closed.
	StateDead
)

const (
	// pingPeriod is the fixed interval between liveness probes.
	pingPeriod = 3 * time.Second

	// deathTimeout is how long after a probe an acknowledgment must arrive.
	deathTimeout = 1 * time.Second
)

// liveTimer is the cancelable handle returned by the timer factory.
type liveTimer interface {
	Stop() bool
}

// timerFactory creates a one-shot timer invoking fn after d. Production code uses
// time.AfterFunc; tests substitute a manual implementation to simulate time.
type timerFactory func(d time.Duration, fn func()) liveTimer

func stdTimerFactory(d time.Duration, fn func()) liveTimer {
	return time.AfterFunc(d, fn)
}

// Monitor is the per-connection liveness state machine.
//
// ALIVE --ping timer--> AWAITING_PONG --pong--> ALIVE
// AWAITING_PONG --death timer--> DEAD (terminal)
//
// The ping timer repeats with a fixed period. The worst-case detection latency for
// a silently dropped transport is pingPeriod + deathTimeout.
type Monitor struct {
	mu sync.Mutex

	state LivenessState

	pingPeriod   time.Duration
	deathTimeout time.Duration

	newTimer timerFactory

	// probe sends a ping control frame on the transport.
	probe func()

	// expire terminates the transport and removes the connection from the registry.
	expire func()

	pingTimer  liveTimer
	deathTimer liveTimer
}

func newMonitor(pingPeriod, deathTimeout time.Duration, newTimer timerFactory, probe, expire func()) *Monitor {
	return &Monitor{
		state:        StateAlive,
		pingPeriod:   pingPeriod,
		deathTimeout: deathTimeout,
		newTimer:     newTimer,
		probe:        probe,
		expire:       expire,
	}
}

// Start arms the repeating ping timer. Called when the connection registers.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDead || m.pingTimer != nil {
		return
	}

	m.pingTimer = m.newTimer(m.pingPeriod, m.pingFired)
}

// pingFired sends the liveness probe, arms the death timer, and reschedules itself.
func (m *Monitor) pingFired() {
	m.mu.Lock()

	if m.state == StateDead {
		m.mu.Unlock()
		return
	}

	if m.state == StateAlive {
		m.state = StateAwaitingPong
		m.deathTimer = m.newTimer(m.deathTimeout, m.deathFired)
	}

	m.pingTimer = m.newTimer(m.pingPeriod, m.pingFired)
	probe := m.probe

	m.mu.Unlock()

	probe()
}

// PongReceived cancels the pending death timer and returns the state machine to ALIVE.
// Acknowledgments arriving in any other state are ignored.
func (m *Monitor) PongReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingPong {
		return
	}

	if m.deathTimer != nil {
		m.deathTimer.Stop()
		m.deathTimer = nil
	}

	m.state = StateAlive
}

// deathFired fires when no acknowledgment arrived in time. The transition to DEAD
// is terminal; the expire callback tears the connection down.
func (m *Monitor) deathFired() {
	m.mu.Lock()

	if m.state != StateAwaitingPong {
		m.mu.Unlock()
		return
	}

	m.state = StateDead
	if m.pingTimer != nil {
		m.pingTimer.Stop()
		m.pingTimer = nil
	}
	expire := m.expire

	m.mu.Unlock()

	expire()
}

// Stop cancels all pending timers and marks the monitor DEAD. Called on explicit
// close from either side. Idempotent, and must run before the connection object
// is discarded so no timer fires against a terminated transport.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDead && m.pingTimer == nil && m.deathTimer == nil {
		return
	}

	m.state = StateDead

	if m.pingTimer != nil {
		m.pingTimer.Stop()
		m.pingTimer = nil
	}
	if m.deathTimer != nil {
		m.deathTimer.Stop()
		m.deathTimer = nil
	}
}

// State returns the current liveness state.
func (m *Monitor) State() LivenessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
