package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IntervalUnitHour is the only unit recognised in schedule intervals.
const IntervalUnitHour = "hour"

// ParseInterval turns interval text such as "4 hour" into a duration.
// The count is a base-10 integer, possibly zero or negative, followed by the
// literal unit "hour".
func ParseInterval(text string) (time.Duration, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 || fields[1] != IntervalUnitHour {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedIntervalFormat, text)
	}

	hours, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedIntervalFormat, text)
	}

	return time.Duration(hours) * time.Hour, nil
}
