package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, time.March, 20, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		text     string
		expected time.Time
		fails    bool
	}{
		{text: "26-Mar", expected: time.Date(2024, time.March, 26, 0, 0, 0, 0, time.UTC)},
		{text: "02-Apr-2025", expected: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
		{text: "02-Apr-25", expected: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
		{text: "Mar 5, 24", expected: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{text: "September 12, 2024", expected: time.Date(2024, time.September, 12, 0, 0, 0, 0, time.UTC)},
		{text: "31-Feb", fails: true},
		{text: "12-Xyz", fails: true},
		{text: "tomorrow", fails: true},
	}

	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			date, err := parseDate(c.text, now)
			if c.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, c.expected.Equal(date), "expected %s, got %s", c.expected, date)
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	date := time.Date(2024, time.March, 26, 0, 0, 0, 0, time.UTC)

	span, err := parseTimeRange("1300-1430", date)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 26, 13, 0, 0, 0, time.UTC), span.Start)
	require.Equal(t, time.Date(2024, time.March, 26, 14, 30, 0, 0, time.UTC), span.End)
	require.Equal(t, "1300-1430", span.String())

	span, err = parseTimeRange("09:00 – 10:15", date)
	require.NoError(t, err)
	require.Equal(t, "0900-1015", span.String())

	for _, invalid := range []string{"2560-1430", "1300-1275", "1430-1300", "1300", ""} {
		_, err := parseTimeRange(invalid, date)
		require.Error(t, err, invalid)
	}
}
