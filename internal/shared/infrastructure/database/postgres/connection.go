package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterPostgresDriver(NewConnection)
}

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type executor struct {
	q querier
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	tag, err := e.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return commandResult(tag), nil
}

func (e executor) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return e.q.QueryRow(ctx, query, args...)
}

func (e executor) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := e.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return resultRows{rows}, nil
}

// Connection implements database.Connection over a pgx pool.
type Connection struct {
	executor
	pool *pgxpool.Pool
}

// NewConnection creates a pooled PostgreSQL connection and verifies it.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		maxConns, err := convert.IntToInt32(cfg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("invalid max connections: %w", err)
		}
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	return &Connection{executor: executor{q: pool}, pool: pool}, nil
}

// Pool returns the underlying pool.
func (c *Connection) Pool() *pgxpool.Pool { return c.pool }

// Driver returns database.DriverPostgres.
func (c *Connection) Driver() database.Driver { return database.DriverPostgres }

// Close closes the pool.
func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

// Ping verifies the server is reachable.
func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

// BeginTx starts a new transaction.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{executor: executor{q: tx}, tx: tx}, nil
}

// Transaction implements database.Transaction over pgx.Tx.
type Transaction struct {
	executor
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Transaction) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

// Rollback rolls back the transaction.
func (t *Transaction) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type commandResult pgconn.CommandTag

func (r commandResult) RowsAffected() (int64, error) {
	return pgconn.CommandTag(r).RowsAffected(), nil
}

// resultRows adapts pgx.Rows, whose Close has no error.
type resultRows struct {
	pgx.Rows
}

func (r resultRows) Close() error {
	r.Rows.Close()
	return nil
}
