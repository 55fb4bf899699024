package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchName(t *testing.T) {
	matchers := []string{"timetable", "课程表"}

	require.True(t, MatchName("My  Time table", matchers))
	require.True(t, MatchName("本周课程表", matchers))
	require.False(t, MatchName("Grades", matchers))
}

func TestFuzzyMatchName(t *testing.T) {
	matchers := []string{"timetable", "schedule"}

	require.True(t, FuzzyMatchName("Timetabel", matchers, 0.9))
	require.True(t, FuzzyMatchName("Schedules", matchers, 0.9))
	require.False(t, FuzzyMatchName("Library", matchers, 0.9))
	require.False(t, FuzzyMatchName("   ", matchers, 0.9))
}
