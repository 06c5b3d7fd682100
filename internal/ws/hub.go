// Package ws implements the WebSocket hub and clients that stream exploration
// graph snapshots to renderers.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/metrics"
	"github.com/batchmates/batchmates/internal/models"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
)

// Connection caps.
const (
	maxClients           = 1000
	maxClientsPerSession = 16
)

// maxBroadcastPayload is the largest snapshot message the hub forwards (1 MB).
const maxBroadcastPayload = 1 << 20

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// sessionBroadcast is sent through the broadcast channel to the Run goroutine.
type sessionBroadcast struct {
	sessionID string
	id        uint64
	msg       []byte
}

// Hub manages active WebSocket clients and broadcasts per-session messages.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients      map[*Client]bool
	sessionCount map[string]int
	register     chan *Client
	unregister   chan *Client
	broadcast    chan sessionBroadcast
	closeSession chan string
	shutdown     chan struct{} // signals Run to begin graceful drain
	done         chan struct{} // closed when Run has finished draining
	count        atomic.Int64
	log          *logrus.Logger
	seq          *EventSequence
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		sessionCount: make(map[string]int),
		register:     make(chan *Client, registerBuffer),
		unregister:   make(chan *Client, registerBuffer),
		broadcast:    make(chan sessionBroadcast, broadcastBuffer),
		closeSession: make(chan string, registerBuffer),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		log:          log,
		seq:          NewEventSequence(),
	}
}

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.removeClient(client)
			}
			h.updateCount()
			h.log.WithField("total", len(h.clients)).Debug("client unregistered")

		case b := <-h.broadcast:
			for client := range h.clients {
				if client.SessionID != b.sessionID || (b.id != 0 && b.id <= client.seen) {
					continue
				}
				select {
				case client.send <- b.msg:
				default:
					h.log.WithField("session_id", client.SessionID).Warn("client too slow, disconnecting")
					h.removeClient(client)
				}
			}
			h.updateCount()

		case sessionID := <-h.closeSession:
			msg := h.marshalEvent(EventSessionClosed, sessionID, h.seq.Next(sessionID), nil)
			for client := range h.clients {
				if client.SessionID != sessionID {
					continue
				}
				select {
				case client.send <- msg:
				default:
				}
				h.removeClient(client)
			}
			h.seq.Forget(sessionID)
			h.updateCount()
		}
	}
}

// addClient applies connection caps, then registers the client and queues
// its initial snapshot ahead of any later broadcast.
func (h *Hub) addClient(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		client.closeSend()

		return
	}

	if h.sessionCount[client.SessionID] >= maxClientsPerSession {
		h.log.WithField("session_id", client.SessionID).Warn("per-session connection limit reached, dropping client")
		client.closeSend()

		return
	}

	if client.snapshot != nil {
		// Every change numbered up to id is already applied when the snapshot
		// is taken, so the snapshot carries id and older queued events are
		// skipped for this client. IDs a client sees strictly increase.
		id := h.seq.Current(client.SessionID)

		g, err := client.snapshot()
		if err != nil {
			h.log.WithError(err).WithField("session_id", client.SessionID).Debug("session gone before registration")
			client.closeSend()

			return
		}

		if msg := h.graphMessage(client.SessionID, g, id); msg != nil {
			client.send <- msg
		}

		client.seen = id
	}

	h.clients[client] = true
	h.sessionCount[client.SessionID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{
		"session_id": client.SessionID,
		"total":      len(h.clients),
	}).Debug("client registered")
}

func (h *Hub) removeClient(client *Client) {
	delete(h.clients, client)
	client.closeSend()

	h.sessionCount[client.SessionID]--
	if h.sessionCount[client.SessionID] <= 0 {
		delete(h.sessionCount, client.SessionID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// PublishGraph broadcasts a graph.updated event to the session's clients.
// It never blocks; the send happens in the Run goroutine.
func (h *Hub) PublishGraph(sessionID string, g models.Graph) {
	id := h.seq.Next(sessionID)
	h.broadcastEvent(sessionID, id, h.graphMessage(sessionID, g, id))
}

// CloseSession notifies and disconnects every client of a session.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeSession <- sessionID:
	default:
		h.log.WithField("session_id", sessionID).Warn("close channel full, clients will expire on their own")
	}
}

// BroadcastToSession sends a message only to clients of the given session.
// Payloads over maxBroadcastPayload are dropped with a warning log.
func (h *Hub) BroadcastToSession(sessionID string, msg []byte) {
	h.broadcastEvent(sessionID, 0, msg)
}

// broadcastEvent queues msg for the session's clients. A nonzero id is
// skipped by clients whose snapshot already covers it.
func (h *Hub) broadcastEvent(sessionID string, id uint64, msg []byte) {
	if msg == nil {
		return
	}

	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"session_id":   sessionID,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")

		return
	}

	select {
	case h.broadcast <- sessionBroadcast{sessionID: sessionID, id: id, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown initiates a graceful WebSocket drain: sends a shutdown frame to
// every connected client, waits for their write pumps to flush, then closes
// all connections. It blocks until drain is complete or the timeout expires.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) graphMessage(sessionID string, g models.Graph, id uint64) []byte {
	data, err := json.Marshal(g)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal graph")

		return nil
	}

	return h.marshalEvent(EventGraphUpdated, sessionID, id, data)
}

func (h *Hub) marshalEvent(eventType, sessionID string, id uint64, data json.RawMessage) []byte {
	msg, err := json.Marshal(Event{
		Type:      eventType,
		ID:        id,
		SessionID: sessionID,
		Data:      data,
		Time:      time.Now().UTC(),
	})
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")

		return nil
	}

	return msg
}

// drainClients sends a shutdown frame to every client and waits for buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"` + EventShutdown + `","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

drain:
	for {
		allDrained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				allDrained = false

				break
			}
		}

		if allDrained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			break drain
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.sessionCount = make(map[string]int)
	h.count.Store(0)
	metrics.WSConnections.Set(0)
}
