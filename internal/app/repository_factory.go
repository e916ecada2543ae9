package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
	"github.com/felixgeelhaar/nextdose/internal/medications/infrastructure/persistence"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/nextdose/pkg/config"
)

// RepositoryFactory creates the medication repository for the configured store.
type RepositoryFactory struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(cfg *config.Config, logger *slog.Logger) *RepositoryFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryFactory{cfg: cfg, logger: logger}
}

// MedicationRepository opens the configured store. The returned connection is
// nil for the YAML store; otherwise the caller owns it and must close it.
func (f *RepositoryFactory) MedicationRepository(ctx context.Context) (domain.Repository, database.Connection, error) {
	switch f.cfg.StorageDriver {
	case config.StoreYAML:
		repo := persistence.NewYAMLRepository(f.cfg.YAMLPath)
		f.logger.DebugContext(ctx, "using yaml store", "path", repo.Path())
		return repo, nil, nil

	case config.StoreSQLite, config.StorePostgres:
		conn, err := f.openConnection(ctx)
		if err != nil {
			return nil, nil, err
		}
		return persistence.NewSQLMedicationRepository(conn), conn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store: %s", f.cfg.StorageDriver)
	}
}

func (f *RepositoryFactory) openConnection(ctx context.Context) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: f.cfg.SQLitePath,
		MaxConns:   f.cfg.DatabaseMaxConns,
	}
	if f.cfg.StorageDriver == config.StorePostgres {
		dbCfg.Driver = database.DriverPostgres
		dbCfg.URL = f.cfg.DatabaseURL
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	f.logger.Debug("connected to database", "driver", conn.Driver().String())

	if conn.Driver() == database.DriverPostgres && f.cfg.BreakerEnabled {
		failures, err := convert.IntToUint32(f.cfg.BreakerFailures)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("invalid DATABASE_BREAKER_FAILURES: %w", err)
		}
		breakerCfg := database.DefaultBreakerConfig()
		breakerCfg.FailureThreshold = failures
		breakerCfg.Timeout = f.cfg.BreakerTimeout
		return database.NewBreakerConnection(conn, breakerCfg, f.logger), nil
	}
	return conn, nil
}
