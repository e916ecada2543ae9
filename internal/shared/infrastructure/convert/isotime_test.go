package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTime(t *testing.T) {
	plus4 := time.FixedZone("", 4*3600)
	expected := time.Date(2024, 1, 5, 14, 51, 0, 0, plus4)

	tests := []struct {
		name  string
		value string
	}{
		{name: "hour-only offset", value: "2024-01-05T14:51:00+04"},
		{name: "colon offset", value: "2024-01-05T14:51:00+04:00"},
		{name: "compact offset", value: "2024-01-05T14:51:00+0400"},
		{name: "minutes precision", value: "2024-01-05T14:51+04:00"},
		{name: "space separator", value: "2024-01-05 14:51:00+04"},
		{name: "utc designator", value: "2024-01-05T10:51:00Z"},
		{name: "surrounding whitespace", value: "  2024-01-05T14:51:00+04  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseISOTime(tc.value, nil)
			require.NoError(t, err)
			assert.True(t, expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseISOTime_KeepsOffset(t *testing.T) {
	got, err := ParseISOTime("2024-01-05T14:51:00+03", nil)
	require.NoError(t, err)

	_, offset := got.Zone()
	assert.Equal(t, 3*3600, offset)
	assert.Equal(t, "2024-01-05T14:51:00+03:00", FormatISOTime(got))
}

func TestParseISOTime_FractionalSeconds(t *testing.T) {
	got, err := ParseISOTime("2024-01-05T14:51:00.250+04:00", nil)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Nanosecond()))
}

func TestParseISOTime_NaiveUsesLocation(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)

	got, err := ParseISOTime("2024-01-05T14:51:00", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())

	day, err := ParseISOTime("2024-01-05", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 5, 0, 0, 0, 0, loc).Equal(day))
}

func TestParseISOTime_Invalid(t *testing.T) {
	for _, value := range []string{"", "yesterday", "2024-13-05T14:51:00+04", "05/01/2024 14:51"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseISOTime(value, nil)
			assert.Error(t, err)
		})
	}
}
