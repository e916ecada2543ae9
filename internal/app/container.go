package app

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/commands"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/nextdose/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	MedicationRepo domain.Repository
	DBConn         database.Connection // nil for the YAML store

	// Scheduler state shared by all handlers
	Registry *application.Registry

	// Command handlers
	AddScheduleHandler    *commands.AddScheduleHandler
	RegisterIntakeHandler *commands.RegisterIntakeHandler

	// Query handlers
	NextDoseHandler        *queries.NextDoseHandler
	ListMedicationsHandler *queries.ListMedicationsHandler
}

// NewContainer opens the configured store, loads its medications into the
// scheduler and builds the handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, conn, err := NewRepositoryFactory(cfg, logger).MedicationRepository(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := application.LoadRegistry(ctx, repo)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, err
	}

	c := &Container{
		Config:         cfg,
		Logger:         logger,
		MedicationRepo: repo,
		DBConn:         conn,
		Registry:       registry,
	}
	c.wireHandlers()

	_ = registry.View(func(s *domain.Scheduler) error {
		logger.Debug("medications loaded", "store", cfg.StorageDriver, "count", s.Len())
		return nil
	})
	return c, nil
}

func (c *Container) wireHandlers() {
	c.AddScheduleHandler = commands.NewAddScheduleHandler(c.Registry, c.MedicationRepo, c.Logger)
	c.RegisterIntakeHandler = commands.NewRegisterIntakeHandler(c.Registry, c.MedicationRepo, c.Logger)
	c.NextDoseHandler = queries.NewNextDoseHandler(c.Registry)
	c.ListMedicationsHandler = queries.NewListMedicationsHandler(c.Registry)
}

// Close releases the database connection, if any.
func (c *Container) Close() {
	if c.DBConn == nil {
		return
	}
	if err := c.DBConn.Close(); err != nil {
		c.Logger.Warn("error closing database connection", "error", err)
	}
}
