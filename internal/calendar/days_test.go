package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventAt(summary string, start time.Time) Event {
	return Event{Summary: summary, Start: start, End: start.Add(2 * time.Hour)}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterByTitle(t *testing.T) {
	events := []Event{
		eventAt("Jam Session", day("2026-01-03")),
		eventAt("Board Meeting", day("2026-01-04")),
		eventAt("Jam Session", day("2026-01-05")),
	}

	filtered := FilterByTitle(events, "Jam Session")
	require.Len(t, filtered, 2)
	assert.Equal(t, day("2026-01-03"), filtered[0].Start)
	assert.Equal(t, day("2026-01-05"), filtered[1].Start)
}

func TestFilterByTitleIsIdempotent(t *testing.T) {
	events := []Event{
		eventAt("Jam Session", day("2026-01-03")),
		eventAt("Other", day("2026-01-04")),
	}

	once := FilterByTitle(events, "Jam Session")
	twice := FilterByTitle(once, "Jam Session")
	assert.Equal(t, once, twice)
}

func TestFilterByTitleIsExactMatch(t *testing.T) {
	events := []Event{
		eventAt("Jam Session (cancelled)", day("2026-01-03")),
		eventAt("jam session", day("2026-01-04")),
	}
	assert.Empty(t, FilterByTitle(events, "Jam Session"))
}

func TestDayGapsPastChain(t *testing.T) {
	// Most-recent-first with gaps of 3 then 10 days
	past := []Event{
		eventAt("e", day("2026-01-20")),
		eventAt("e", day("2026-01-17")),
		eventAt("e", day("2026-01-07")),
	}

	pastEntries, _ := DayGaps(past, nil)
	require.Len(t, pastEntries, 3)

	require.NotNil(t, pastEntries[0].DaysSincePrevious)
	assert.Equal(t, 3, *pastEntries[0].DaysSincePrevious)
	require.NotNil(t, pastEntries[1].DaysSincePrevious)
	assert.Equal(t, 10, *pastEntries[1].DaysSincePrevious)
	assert.Nil(t, pastEntries[2].DaysSincePrevious, "the oldest entry has no previous")
}

func TestDayGapsUpcomingLinkage(t *testing.T) {
	past := []Event{
		eventAt("e", day("2026-01-18")),
		eventAt("e", day("2026-01-10")),
	}
	upcoming := []Event{
		eventAt("e", day("2026-01-20")),
		eventAt("e", day("2026-01-27")),
	}

	_, upcomingEntries := DayGaps(past, upcoming)
	require.Len(t, upcomingEntries, 2)

	// First upcoming entry links to the nearest past event, 2 days earlier
	require.NotNil(t, upcomingEntries[0].DaysSincePrevious)
	assert.Equal(t, 2, *upcomingEntries[0].DaysSincePrevious)

	// Second entry chains to the first upcoming entry, not the past list
	require.NotNil(t, upcomingEntries[1].DaysSincePrevious)
	assert.Equal(t, 7, *upcomingEntries[1].DaysSincePrevious)
}

func TestDayGapsUpcomingWithoutPast(t *testing.T) {
	upcoming := []Event{
		eventAt("e", day("2026-01-20")),
		eventAt("e", day("2026-01-22")),
	}

	_, upcomingEntries := DayGaps(nil, upcoming)
	require.Len(t, upcomingEntries, 2)
	assert.Nil(t, upcomingEntries[0].DaysSincePrevious)
	require.NotNil(t, upcomingEntries[1].DaysSincePrevious)
	assert.Equal(t, 2, *upcomingEntries[1].DaysSincePrevious)
}

func TestDayGapsFloorsPartialDays(t *testing.T) {
	past := []Event{
		{Summary: "e", Start: time.Date(2026, 1, 20, 21, 0, 0, 0, time.UTC)},
		{Summary: "e", Start: time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)},
	}

	pastEntries, _ := DayGaps(past, nil)
	require.NotNil(t, pastEntries[0].DaysSincePrevious)
	assert.Equal(t, 3, *pastEntries[0].DaysSincePrevious, "3.5 days floors to 3")
}

func TestDayGapsMixedRepresentations(t *testing.T) {
	// A timed event against an all-day event: both use the start instant
	past := []Event{
		{Summary: "e", Start: time.Date(2026, 1, 20, 19, 30, 0, 0, time.UTC)},
		{Summary: "e", Start: day("2026-01-15"), AllDay: true},
	}

	pastEntries, _ := DayGaps(past, nil)
	require.NotNil(t, pastEntries[0].DaysSincePrevious)
	assert.Equal(t, 5, *pastEntries[0].DaysSincePrevious)
}

func TestDayGapsEmpty(t *testing.T) {
	pastEntries, upcomingEntries := DayGaps(nil, nil)
	assert.Empty(t, pastEntries)
	assert.Empty(t, upcomingEntries)
}
