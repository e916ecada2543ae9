package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	mcplocal "github.com/felixgeelhaar/nextdose/adapter/mcp"
	"github.com/felixgeelhaar/nextdose/pkg/config"
)

// ServerName identifies the tool server to clients.
const ServerName = "nextdose-mcp"

// NewServer builds the tool server with the medication tools registered.
func NewServer(cliApp *cli.App) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("CLI app is required")
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    ServerName,
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	})

	if err := mcplocal.RegisterCLITools(srv, mcplocal.ToolDependencies{App: cliApp}); err != nil {
		return nil, err
	}
	return srv, nil
}

// Serve starts an MCP server that mirrors CLI behavior and blocks until the context is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := NewServer(cliApp)
	if err != nil {
		return err
	}

	adapter := mcpLogger{logger: logger}
	stack := middlewareStack(cfg, adapter)

	logger.Info("mcp server listening", "addr", cfg.MCPAddr)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

// middlewareStack returns the request middleware, with bearer authentication in
// front when MCP_AUTH_TOKEN is set.
func middlewareStack(cfg *config.Config, adapter mcpLogger) []middleware.Middleware {
	stack := middleware.DefaultStack(adapter)

	if cfg.MCPAuthToken != "" {
		authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
			cfg.MCPAuthToken: {ID: "mcp", Name: "mcp"},
		}))
		stack = append([]middleware.Middleware{middleware.Auth(authenticator, middleware.WithAuthLogger(adapter))}, stack...)
	} else {
		adapter.logger.Warn("MCP auth token not set; requests will be unauthenticated")
	}
	return stack
}

type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
