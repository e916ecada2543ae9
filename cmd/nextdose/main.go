package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/adapter/cli/mcp"
	"github.com/felixgeelhaar/nextdose/adapter/cli/medication"
	"github.com/felixgeelhaar/nextdose/internal/app"
	mcpinternal "github.com/felixgeelhaar/nextdose/internal/mcp"
	"github.com/felixgeelhaar/nextdose/pkg/config"
	"github.com/felixgeelhaar/nextdose/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.SetLogger(observability.LoggerFromEnv(cli.Version))
	cli.SetBootstrap(bootstrap)

	cli.AddCommand(medication.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.App, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	logger := observability.LoggerFromConfig(cfg, cli.Version, os.Stderr)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return mcpinternal.NewCLIApp(container), container.Close, nil
}
