package observability

import (
	"context"

	"github.com/google/uuid"
)

// Standard attribute keys used in logs.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

type contextKey int

const (
	correlationIDCtxKey contextKey = iota
	requestIDCtxKey
	operationCtxKey
)

// WithCorrelationID tags ctx with the id shared by every log line of one CLI
// command. An empty id gets a fresh UUID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withID(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithRequestID tags ctx with the id of one MCP tool call. An empty id gets a
// fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDCtxKey)
}

// WithOperation names what ctx is doing: a CLI command path or an MCP tool.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationCtxKey, operation)
}

// OperationFromContext returns the operation name, or "".
func OperationFromContext(ctx context.Context) string {
	return stringValue(ctx, operationCtxKey)
}

func withID(ctx context.Context, key contextKey, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, key, id)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
