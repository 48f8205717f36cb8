package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-12-31")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseDate_RejectsOtherLayouts(t *testing.T) {
	for _, raw := range []string{"31-12-2026", "2026/12/31", "2026-13-01", "yarın"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2026, 8, 17, 23, 59, 0, 0, time.UTC)
	to := time.Date(2026, 8, 27, 0, 1, 0, 0, time.UTC)

	// Time of day does not matter, only the calendar dates.
	assert.Equal(t, 10, DaysBetween(from, to))
	assert.Equal(t, -10, DaysBetween(to, from))
	assert.Equal(t, 0, DaysBetween(to, to))
}

func TestIsPastDue(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsPastDue(now.AddDate(0, 0, -1), now))
	assert.False(t, IsPastDue(now, now))
	// Earlier the same day is still not overdue.
	assert.False(t, IsPastDue(now.Add(-6*time.Hour), now))
	assert.False(t, IsPastDue(now.AddDate(0, 0, 1), now))
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2026, 8, 27, 18, 45, 12, 99, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), TruncateToDay(ts))
}
