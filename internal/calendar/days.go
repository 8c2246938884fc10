package calendar

// FilterByTitle restricts events to those whose summary equals the target
// title exactly. Idempotent.
func FilterByTitle(events []Event, title string) []Event {
	filtered := make([]Event, 0, len(events))
	for _, event := range events {
		if event.Summary == title {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// DayGaps derives daysSincePrevious for both presentation lists.
//
// Past is most-recent-first: entry i's previous is entry i+1 (the next-older
// one); the oldest entry has no previous. Upcoming is soonest-first: the first
// entry's previous is the nearest past occurrence (past index 0) when one
// exists; later entries chain to the immediately preceding upcoming entry.
func DayGaps(past, upcoming []Event) (pastEntries, upcomingEntries []Entry) {
	pastEntries = make([]Entry, len(past))
	for i, event := range past {
		entry := Entry{Event: event}
		if i+1 < len(past) {
			entry.DaysSincePrevious = gap(event, past[i+1])
		}
		pastEntries[i] = entry
	}

	upcomingEntries = make([]Entry, len(upcoming))
	for i, event := range upcoming {
		entry := Entry{Event: event}
		switch {
		case i > 0:
			entry.DaysSincePrevious = gap(event, upcoming[i-1])
		case len(past) > 0:
			entry.DaysSincePrevious = gap(event, past[0])
		}
		upcomingEntries[i] = entry
	}

	return pastEntries, upcomingEntries
}

// gap is the whole-day floor of the absolute difference between two events'
// start instants.
func gap(a, b Event) *int {
	d := a.Start.Sub(b.Start)
	if d < 0 {
		d = -d
	}
	days := int(d.Hours() / 24)
	return &days
}
