package mcp

import (
	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	return cli.NewApp(
		container.Config,
		container.Logger,
		container.AddScheduleHandler,
		container.RegisterIntakeHandler,
		container.NextDoseHandler,
		container.ListMedicationsHandler,
	)
}
