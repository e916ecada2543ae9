package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer logs how long an operation took.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
}

// StartTimer creates a new timer for the given operation.
func StartTimer(logger *slog.Logger, operation string) *Timer {
	return &Timer{
		operation: operation,
		start:     time.Now(),
		logger:    logger,
	}
}

// Stop logs the outcome at info, or at error when err is non-nil, and
// returns the elapsed time.
func (t *Timer) Stop(ctx context.Context, err error) time.Duration {
	duration := time.Since(t.start)
	if t.logger == nil {
		return duration
	}

	args := []any{DurationKey, duration.Milliseconds()}
	if OperationFromContext(ctx) != t.operation {
		args = append(args, OperationKey, t.operation)
	}

	if err != nil {
		t.logger.ErrorContext(ctx, "operation failed", append(args, ErrorKey, err.Error())...)
	} else {
		t.logger.InfoContext(ctx, "operation completed", args...)
	}
	return duration
}

// Elapsed returns the elapsed time without stopping the timer.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
