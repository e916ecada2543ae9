package mcp

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

// parseOptionalTime reads an ISO-8601 timestamp; empty means the zero time.
func parseOptionalTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := convert.ParseISOTime(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return t, nil
}
