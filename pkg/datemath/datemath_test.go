package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := Parse(raw)
	require.NoError(t, err)
	return d
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		from string
		n    int
		want string
	}{
		{"2024-01-15", 12, "2025-01-15"},
		{"2025-01-01", 6, "2025-07-01"},
		{"2025-06-20", 6, "2025-12-20"},
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-08-31", 6, "2026-02-28"},
		{"2025-03-31", -1, "2025-02-28"},
		{"2025-11-30", 24, "2027-11-30"},
	}
	for _, tc := range cases {
		got := AddMonths(day(t, tc.from), tc.n)
		assert.Equal(t, tc.want, Format(got), "%s %+d months", tc.from, tc.n)
	}
}

func TestAddDaysAndDaysBetween(t *testing.T) {
	from := day(t, "2025-12-18")
	assert.Equal(t, "2026-01-17", Format(AddDays(from, 30)))
	assert.Equal(t, 30, DaysBetween(from, AddDays(from, 30)))
	assert.Equal(t, -3, DaysBetween(from, day(t, "2025-12-15")))
}

func TestDateTruncatesWallClock(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	late := time.Date(2025, 3, 10, 23, 45, 0, 0, paris)
	assert.Equal(t, "2025-03-10", Format(late))
}

func TestWithinIsInclusive(t *testing.T) {
	start, end := day(t, "2025-01-01"), day(t, "2025-01-31")
	assert.True(t, Within(start, start, end))
	assert.True(t, Within(end.Add(20*time.Hour), start, end))
	assert.False(t, Within(day(t, "2025-02-01"), start, end))
	assert.False(t, Within(day(t, "2024-12-31"), start, end))
}

func TestClockTodayUsesCanonicalZone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 23:30 UTC on March 10 is already March 11 in Paris.
	instant := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	clock := NewFixedClock(instant, paris)
	utcClock := NewFixedClock(instant, time.UTC)

	assert.Equal(t, "2025-03-11", Format(clock.Today()))
	assert.Equal(t, "2025-03-10", Format(utcClock.Today()))

	due := day(t, "2025-03-10")
	assert.True(t, clock.IsPast(due))
	assert.False(t, utcClock.IsPast(due))
}

func TestClockIsPastAndFuture(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.False(t, clock.IsPast(day(t, "2025-06-01")))
	assert.False(t, clock.IsFuture(day(t, "2025-06-01")))
	assert.True(t, clock.IsPast(day(t, "2025-05-31")))
	assert.True(t, clock.IsFuture(day(t, "2025-06-02")))
}

func TestNewClockRejectsUnknownZone(t *testing.T) {
	_, err := NewClock("Mars/Olympus")
	require.Error(t, err)

	clock, err := NewClock("")
	require.NoError(t, err)
	assert.Equal(t, DefaultZone, clock.Location().String())
}
