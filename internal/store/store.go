// Package store provides focused, single-concern data access for batchmates.
//
// Database stores embed shared helpers (Pool, logger) via the Base struct.
// Stores never import each other; shared logic lives in this file.
// ProfileFile serves the intro JSON file that profile listings read from.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// importQueryTimeout bounds a whole import transaction.
const importQueryTimeout = 5 * time.Minute

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// unmappedInterest is the normalised bucket for interests without a mapping.
// It groups unrelated entries, so lookups treat it as unknown.
const unmappedInterest = "misc"

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// clampLimit applies fallback to non-positive limits and caps the rest.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}

	return min(limit, maxListLimit)
}
