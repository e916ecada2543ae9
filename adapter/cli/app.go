package cli

import (
	"log/slog"

	"github.com/felixgeelhaar/nextdose/internal/medications/application/commands"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
	"github.com/felixgeelhaar/nextdose/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Medication Command Handlers
	AddScheduleHandler    *commands.AddScheduleHandler
	RegisterIntakeHandler *commands.RegisterIntakeHandler

	// Medication Query Handlers
	NextDoseHandler        *queries.NextDoseHandler
	ListMedicationsHandler *queries.ListMedicationsHandler
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	addScheduleHandler *commands.AddScheduleHandler,
	registerIntakeHandler *commands.RegisterIntakeHandler,
	nextDoseHandler *queries.NextDoseHandler,
	listMedicationsHandler *queries.ListMedicationsHandler,
) *App {
	return &App{
		Config:                 cfg,
		Logger:                 logger,
		AddScheduleHandler:     addScheduleHandler,
		RegisterIntakeHandler:  registerIntakeHandler,
		NextDoseHandler:        nextDoseHandler,
		ListMedicationsHandler: listMedicationsHandler,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
