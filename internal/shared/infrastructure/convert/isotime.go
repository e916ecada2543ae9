package convert

import (
	"fmt"
	"strings"
	"time"
)

// isoDateTimeLayouts cover the date-time shapes accepted by ISO-8601 readers
// in the wild: minutes or seconds precision, "T" or space separator.
var isoDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// isoZoneLayouts are tried in order after each date-time layout.
// An empty zone means the value is interpreted in the local time zone.
var isoZoneLayouts = []string{"Z07:00", "-0700", "-07", ""}

// ParseISOTime parses an ISO-8601 timestamp. Offsets may be written as Z,
// +HH, +HHMM or +HH:MM; fractional seconds are accepted; values without an
// offset, and bare dates, are read in loc (time.Local when nil).
func ParseISOTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid timestamp: empty value")
	}

	for _, base := range isoDateTimeLayouts {
		for _, zone := range isoZoneLayouts {
			if t, err := time.ParseInLocation(base+zone, s, loc); err == nil {
				return t, nil
			}
		}
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601 such as 2024-01-05T14:31:00+04:00", value)
}

// FormatISOTime renders t as RFC 3339, keeping its UTC offset.
func FormatISOTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
