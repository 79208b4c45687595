package datetime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	t.Run("date only", func(t *testing.T) {
		got, err := ParseStart("2025-06-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("RFC3339 is normalized to UTC", func(t *testing.T) {
		got, err := ParseStart("2025-06-01T10:30:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseStart("01/06/2025")
		assert.Error(t, err)
	})
}

func TestParseEnd(t *testing.T) {
	t.Run("date only extends to end of day", func(t *testing.T) {
		got, err := ParseEnd("2025-06-30")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 30, 23, 59, 59, 999999000, time.UTC), got)
	})

	t.Run("RFC3339 is kept as is", func(t *testing.T) {
		got, err := ParseEnd("2025-06-30T12:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("sub-microsecond fraction is truncated", func(t *testing.T) {
		got, err := ParseEnd("2025-06-30T23:59:59.9999999Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 30, 23, 59, 59, 999999000, time.UTC), got)
	})
}

func TestEndBoundsStayBeforeNextUnit(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		next time.Time
	}{
		{name: "day", end: EndOfDay(ts), next: time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)},
		{name: "month", end: EndOfMonth(ts), next: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year", end: EndOfYear(ts), next: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.end, tt.end.Truncate(Precision))
			assert.Equal(t, Precision, tt.next.Sub(tt.end))
		})
	}
}

func TestDateTimeJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		var dt DateTime
		require.NoError(t, json.Unmarshal([]byte(`"2024-12-25T10:30:00Z"`), &dt))
		data, err := json.Marshal(dt)
		require.NoError(t, err)
		assert.Equal(t, `"2024-12-25T10:30:00Z"`, string(data))
	})

	t.Run("date only input", func(t *testing.T) {
		var dt DateTime
		require.NoError(t, json.Unmarshal([]byte(`"2024-12-25"`), &dt))
		assert.Equal(t, time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC), dt.Time)
	})

	t.Run("null leaves zero", func(t *testing.T) {
		var dt DateTime
		require.NoError(t, json.Unmarshal([]byte(`null`), &dt))
		assert.True(t, dt.IsZero())
		data, err := json.Marshal(dt)
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("garbage", func(t *testing.T) {
		var dt DateTime
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &dt))
	})
}

func TestDaysInMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.June, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestQuarter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Quarter(time.January))
	assert.Equal(t, 1, Quarter(time.March))
	assert.Equal(t, 2, Quarter(time.April))
	assert.Equal(t, 3, Quarter(time.September))
	assert.Equal(t, 4, Quarter(time.December))
}

func TestBoundaries(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.February, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 999999000, time.UTC), EndOfMonth(ts))
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), StartOfYear(ts))
	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 999999000, time.UTC), EndOfYear(ts))
}

func TestStartOfISOWeek(t *testing.T) {
	t.Parallel()

	// 2025-06-01 is a Sunday; its ISO week starts Monday 2025-05-26.
	assert.Equal(t, time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC),
		StartOfISOWeek(time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		StartOfISOWeek(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))
}
