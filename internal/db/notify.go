package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/dbpool"
)

// validChannel matches safe PostgreSQL LISTEN channel names.
var validChannel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ImportChannel is the NOTIFY channel the importer signals after a commit.
const ImportChannel = "batchmates_imports"

const (
	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
)

// Invalidator drops cached lookup results after the underlying data changed.
type Invalidator interface {
	Purge()
}

// ImportEvent is the NOTIFY payload sent by the importer.
type ImportEvent struct {
	People    int `json:"people"`
	Interests int `json:"interests"`
	Links     int `json:"links"`
}

// NotifyBridge subscribes to the import channel and purges lookup caches
// whenever another process imports profiles into the database.
type NotifyBridge struct {
	log     *logrus.Logger
	pool    *dbpool.Pool
	targets []Invalidator
	channel string
}

// NewNotifyBridge creates a NotifyBridge that purges targets on every import.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, targets ...Invalidator) *NotifyBridge {
	return &NotifyBridge{
		log:     log,
		pool:    pool,
		targets: targets,
		channel: ImportChannel,
	}
}

// Start checks the database is reachable and runs the listener in the
// background. Later connection failures are retried there.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if !validChannel.MatchString(b.channel) {
		return fmt.Errorf("notify bridge: invalid channel name %q", b.channel)
	}

	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

// listen keeps a subscription open until ctx is cancelled. Notifications
// sent while the connection was down are lost, so every resubscription
// after the first purges the targets as well.
func (b *NotifyBridge) listen(ctx context.Context) {
	backoff := initialBackoff
	first := true

	for ctx.Err() == nil {
		err := b.subscribe(ctx, !first)
		if err == nil || ctx.Err() != nil {
			return
		}

		first = false

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("import listener lost its connection, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

// subscribe issues LISTEN on a dedicated connection and handles
// notifications until the connection fails or ctx is cancelled.
func (b *NotifyBridge) subscribe(ctx context.Context, resync bool) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN takes the channel inline, not as a parameter.
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", b.channel).Info("listening for profile imports")

	if resync {
		b.purge()
		b.log.Info("lookup caches purged after reconnect")
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(n)
	}
}

func (b *NotifyBridge) purge() {
	for _, t := range b.targets {
		t.Purge()
	}
}

// handleNotification purges every target. Unparseable payloads still purge,
// since the notification alone means the data changed.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	fields := logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
	}

	var ev ImportEvent
	if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
		b.log.WithFields(fields).WithError(err).Warn("import notification with unreadable payload")
	} else {
		fields["people"] = ev.People
		fields["interests"] = ev.Interests
		fields["links"] = ev.Links
	}

	b.purge()
	b.log.WithFields(fields).Info("import detected, lookup caches purged")
}

// nextBackoff doubles current, caps it at maxBackoff and applies ±25% jitter.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	// Add ±25% jitter.
	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
