package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrUnsupportedDriver is returned for a driver name nextdose cannot open.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrDriverNotRegistered means the driver package was not imported.
	ErrDriverNotRegistered = errors.New("database driver not registered")
)

// IsNoRows reports whether a single-row query found nothing on either backend.
func IsNoRows(err error) bool {
	return err != nil && (errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows))
}
