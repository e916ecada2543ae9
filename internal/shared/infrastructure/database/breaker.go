package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker placed in front of a remote
// database connection.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed; zero never resets.
	Interval time.Duration
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
}

// DefaultBreakerConfig returns the breaker settings used for PostgreSQL.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "postgres",
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerConnection guards a Connection with a circuit breaker. Once the
// breaker opens, calls fail fast with gobreaker.ErrOpenState until the
// timeout elapses. Transactions are guarded when they begin; statements
// inside a running transaction go straight to the database.
type BreakerConnection struct {
	conn    Connection
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerConnection wraps conn.
func NewBreakerConnection(conn Connection, cfg BreakerConfig, logger *slog.Logger) *BreakerConnection {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A missing row is an answer, not a database fault.
			return err == nil || IsNoRows(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("database circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerConnection{
		conn:    conn,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the current breaker state.
func (c *BreakerConnection) State() gobreaker.State {
	return c.breaker.State()
}

// Unwrap returns the guarded connection.
func (c *BreakerConnection) Unwrap() Connection {
	return c.conn
}

// Driver returns the guarded connection's driver.
func (c *BreakerConnection) Driver() Driver {
	return c.conn.Driver()
}

// Close closes the guarded connection.
func (c *BreakerConnection) Close() error {
	return c.conn.Close()
}

// Ping verifies the connection through the breaker.
func (c *BreakerConnection) Ping(ctx context.Context) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.conn.Ping(ctx)
	})
	return err
}

// BeginTx starts a transaction through the breaker.
func (c *BreakerConnection) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := c.breaker.Execute(func() (any, error) {
		return c.conn.BeginTx(ctx)
	})
	if err != nil {
		return nil, err
	}
	t, _ := tx.(Transaction)
	return t, nil
}

// Exec executes a statement through the breaker.
func (c *BreakerConnection) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.conn.Exec(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	r, _ := res.(Result)
	return r, nil
}

// Query executes a query through the breaker.
func (c *BreakerConnection) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.breaker.Execute(func() (any, error) {
		return c.conn.Query(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	r, _ := rows.(Rows)
	return r, nil
}

// QueryRow defers the breaker to Scan, where single-row errors surface.
func (c *BreakerConnection) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &breakerRow{
		breaker: c.breaker,
		row:     func() Row { return c.conn.QueryRow(ctx, query, args...) },
	}
}

type breakerRow struct {
	breaker *gobreaker.CircuitBreaker[any]
	row     func() Row
}

func (r *breakerRow) Scan(dest ...any) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.row().Scan(dest...)
	})
	return err
}
