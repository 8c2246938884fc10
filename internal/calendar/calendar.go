// Package calendar retrieves and shapes the events the page presents: resolve
// the configured calendar by name, fetch the recent-past and upcoming lists,
// filter them to the target title, and derive the days-since-previous gap for
// each entry.
package calendar

import (
	"errors"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// ErrUnauthenticated means no session token was available; the pipeline is
// simply not invoked in that state.
var ErrUnauthenticated = errors.New("no session token")

// ErrCalendarNotFound means no calendar's summary matched the configured name.
var ErrCalendarNotFound = errors.New("calendar not found")

// ProviderError is a non-success response from the calendar provider. It
// aborts the whole render pass; partial results are never displayed.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// Calendar identifies a provider calendar. The application resolves "its"
// calendar by exact summary match.
type Calendar struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// Event is a single occurrence. Start and End carry the instant for timed
// events and UTC midnight for all-day events; AllDay records which
// representation the provider used.
type Event struct {
	Summary  string    `json:"summary"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"allDay"`
	Location string    `json:"location,omitempty"`
}

// Entry is an event prepared for presentation, with the derived gap to its
// "previous" reference event. Nil when no previous reference exists.
type Entry struct {
	Event
	DaysSincePrevious *int `json:"daysSincePrevious"`
}

// Lists holds both presentation lists: past is most-recent-first, upcoming is
// soonest-first.
type Lists struct {
	Past     []Entry `json:"past"`
	Upcoming []Entry `json:"upcoming"`
}

const allDayFormat = "2006-01-02"

// fromProviderEvent converts a provider event, supporting both time
// representations uniformly.
func fromProviderEvent(item *gcal.Event) (Event, error) {
	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return Event{}, fmt.Errorf("event %q start: %w", item.Id, err)
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return Event{}, fmt.Errorf("event %q end: %w", item.Id, err)
	}

	return Event{
		Summary:  item.Summary,
		Start:    start,
		End:      end,
		AllDay:   allDay,
		Location: item.Location,
	}, nil
}

func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, errors.New("missing time")
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		return t, false, err
	}
	if edt.Date != "" {
		t, err := time.Parse(allDayFormat, edt.Date)
		return t, true, err
	}
	return time.Time{}, false, errors.New("missing time")
}
