package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterSQLiteDriver(NewConnection)
}

// InMemory is the SQLite path for a private in-memory database.
const InMemory = ":memory:"

// filePragmas apply to on-disk databases: WAL so readers are not blocked by
// the writer, enforced foreign keys, and a lock wait instead of SQLITE_BUSY.
var filePragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// querier is the query surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type executor struct {
	q querier
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	result, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLResult(result), nil
}

func (e executor) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return e.q.QueryRowContext(ctx, query, args...)
}

func (e executor) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return database.WrapSQLRows(rows), nil
}

// Connection implements database.Connection over a single sql.DB handle.
type Connection struct {
	executor
	db *sql.DB
}

// NewConnection opens the SQLite database at cfg.SQLitePath, creating its
// directory when needed.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}
	if path != InMemory {
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dataSource(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One writer at a time; for :memory: this also keeps every query on the
	// same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &Connection{executor: executor{q: db}, db: db}, nil
}

func dataSource(path string) string {
	pragmas := filePragmas
	if path == InMemory {
		pragmas = []string{"foreign_keys(1)"}
	}

	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// DB returns the underlying sql.DB.
func (c *Connection) DB() *sql.DB { return c.db }

// Driver returns database.DriverSQLite.
func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

// Close closes the database.
func (c *Connection) Close() error { return c.db.Close() }

// Ping verifies the database is reachable.
func (c *Connection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

// BeginTx starts a new transaction.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Transaction{executor: executor{q: tx}, tx: tx}, nil
}

// Transaction implements database.Transaction over sql.Tx.
type Transaction struct {
	executor
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Transaction) Commit(_ context.Context) error { return t.tx.Commit() }

// Rollback rolls back the transaction.
func (t *Transaction) Rollback(_ context.Context) error { return t.tx.Rollback() }
