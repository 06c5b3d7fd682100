package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types sent to renderers.
const (
	EventGraphUpdated  = "graph.updated"
	EventSessionClosed = "session.closed"
	EventShutdown      = "shutdown"
)

// Event is the structured message sent to WebSocket clients. Data carries a
// full graph snapshot, so a renderer only needs the event with the highest ID.
type Event struct {
	Type      string          `json:"type"`
	ID        uint64          `json:"id"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Time      time.Time       `json:"time"`
}

// EventSequence tracks monotonic event IDs per session.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{
		counters: make(map[string]uint64),
	}
}

// Next returns the next sequence number for a session.
func (es *EventSequence) Next(sessionID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.counters[sessionID]++

	return es.counters[sessionID]
}

// Current returns the last issued sequence number for a session.
func (es *EventSequence) Current(sessionID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	return es.counters[sessionID]
}

// Forget drops the counter of a finished session.
func (es *EventSequence) Forget(sessionID string) {
	es.mu.Lock()
	defer es.mu.Unlock()

	delete(es.counters, sessionID)
}
