package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
)

const (
	writeTimeout     = 10 * time.Second
	wsReadLimit      = 4096
	clientSendBuffer = 256
	maxConnLifetime  = 4 * time.Hour
	pingInterval     = 30 * time.Second
	pingTimeout      = 10 * time.Second
	maxMissedPongs   = 2
)

// SnapshotFunc returns the current graph of a session.
type SnapshotFunc func() (models.Graph, error)

// Client is one renderer following an exploration session. The hub owns its
// send channel; the connection is driven by Serve.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Entry
	SessionID   string
	snapshot    SnapshotFunc
	closeOnce   sync.Once
	connectedAt time.Time

	// seen is the event id of the registration snapshot. Owned by Run.
	seen uint64
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// NewClient creates a Client for the given connection. snapshot supplies the
// graph sent first, when the hub registers the client.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, snapshot SnapshotFunc) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log.WithField("session_id", sessionID),
		SessionID:   sessionID,
		snapshot:    snapshot,
		connectedAt: time.Now(),
	}
}

// Serve registers the client and pumps the connection until it closes, ctx
// is cancelled, or requestDone fires.
func (c *Client) Serve(ctx context.Context, requestDone <-chan struct{}) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-requestDone:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.hub.Register(c)

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump waits for the peer to go away. Renderers only listen, so incoming
// frames are discarded.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("renderer disconnected")
			}

			return
		}
	}
}

// alive pings the peer and reports whether the connection should stay open.
func (c *Client) alive(ctx context.Context, missed *int) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.conn.Ping(pingCtx); err != nil {
		*missed++
		if *missed >= maxMissedPongs {
			c.log.WithField("missed", *missed).Debug("closing unresponsive renderer")

			return false
		}

		return true
	}

	*missed = 0

	return true
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return c.conn.Write(writeCtx, websocket.MessageText, msg)
}

// writePump forwards graph events to the peer. The hub closing the send
// channel ends the stream with a normal closure.
func (c *Client) writePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetime := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetime.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	missed := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if !c.alive(ctx, &missed) {
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "stream closed") //nolint:errcheck // best-effort

				return
			}

			if err := c.write(ctx, msg); err != nil {
				c.log.WithError(err).Debug("graph event write failed")

				return
			}
		case <-lifetime.C:
			c.log.Info("closing graph stream: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return
		}
	}
}
