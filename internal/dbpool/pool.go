// Package dbpool owns the PostgreSQL connection pool shared by the stores,
// the migration runner and the import listener.
package dbpool

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName  = "batchmates"
	statementTimeout = 30 * time.Second

	// listenerConns is held permanently by the import LISTEN bridge.
	listenerConns = 1
)

// Pool wraps a pgxpool.Pool. Stores reach the database only through it.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects and pings the database. maxConns bounds the connections
// available to queries; the listener connection comes on top.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	params["statement_timeout"] = fmt.Sprint(statementTimeout.Milliseconds())

	cfg.MaxConns = max(maxConns, 1) + listenerConns
	cfg.MinConns = min(2, cfg.MaxConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Acquire hands out a dedicated connection, used for LISTEN.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) { return p.pool.Acquire(ctx) }

func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Begin starts a read-write transaction, used by the importer.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) { return p.pool.Begin(ctx) }

// BeginTx starts a transaction with the given options.
func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { //nolint:gocritic // matches pgxpool.
	return p.pool.BeginTx(ctx, opts)
}

func (p *Pool) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// HealthCheck runs a trivial query, which also proves a connection can be
// acquired when the pool is saturated by long lookups.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var one int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}

	return nil
}

// ConnString returns the URL the pool was built from, for the goose driver.
func (p *Pool) ConnString() string { return p.pool.Config().ConnString() }

func (p *Pool) Close() { p.pool.Close() }
