package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/nextdose/internal/mcp"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the medication tools over HTTP until interrupted.

Set MCP_AUTH_TOKEN to require a bearer token from clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.LoadApp(cmd)
		if err != nil {
			return err
		}
		if app.Config == nil {
			return errors.New("mcp serve requires configuration")
		}

		cfg := *app.Config
		if addr != "" {
			cfg.MCPAddr = addr
		}

		err = mcpinternal.Serve(cmd.Context(), &cfg, app, app.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default MCP_ADDR)")
}
