// Package convert provides checked conversions used at configuration and
// storage boundaries.
package convert

import (
	"fmt"
	"math"
)

// IntToInt32 converts an int to int32, returning an error if overflow occurs.
func IntToInt32(v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// IntToUint32 converts an int to uint32, rejecting negative values and overflow.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot convert negative int to uint32: %d", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32", v)
	}
	return uint32(v), nil
}
