package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResetDue(t *testing.T) {
	cases := []struct {
		name string
		last string
		now  string
		want bool
	}{
		{"same instant", "2025-06-01T10:00:00Z", "2025-06-01T10:00:00Z", false},
		{"same day later", "2025-06-01T00:00:01Z", "2025-06-01T23:59:59Z", false},
		{"next day", "2025-06-01T23:59:59Z", "2025-06-02T00:00:00Z", true},
		{"many days later", "2025-05-20T12:00:00Z", "2025-06-02T00:00:00Z", true},
		{"month boundary", "2025-05-31T23:00:00Z", "2025-06-01T01:00:00Z", true},
		{"year boundary", "2024-12-31T23:59:00Z", "2025-01-01T00:01:00Z", true},
	}
	for _, tc := range cases {
		last, err := time.Parse(time.RFC3339, tc.last)
		require.NoError(t, err)
		now, err := time.Parse(time.RFC3339, tc.now)
		require.NoError(t, err)
		require.Equal(t, tc.want, ResetDue(last, now), tc.name)
	}
}

func TestResetDueNormalizesZones(t *testing.T) {
	// 23:00 UTC on the 1st is already the 2nd in UTC+2, but day comparison
	// is fixed to UTC on both sides
	loc := time.FixedZone("UTC+2", 2*3600)
	last := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 2, 0, 30, 0, 0, loc) // 22:30 UTC on the 1st
	require.False(t, ResetDue(last, now))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	// a 7-day trailing window ending today starts 6 days ago at midnight
	require.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), WindowStart(now, 7))
	// a 1-day window is just today
	require.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), WindowStart(now, 1))
}

func TestPolicyConstants(t *testing.T) {
	// the pre-authorization threshold must never exceed the allotment, or
	// a freshly reset user could not start a run
	require.LessOrEqual(t, MinimumBalance, DailyAllotment)
	require.Greater(t, GenerationCost, 0)
}
