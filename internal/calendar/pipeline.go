package calendar

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/log"
)

// Presentation caps applied after the title filter.
const (
	presentedPastMax     = 5
	presentedUpcomingMax = 3
)

// Pipeline turns a valid token into the two presentation lists. Any provider
// failure along the way aborts the whole pass with a single error.
type Pipeline struct {
	cfg config.CalendarConfig
}

// NewPipeline creates a pipeline for the configured calendar and title.
func NewPipeline(cfg config.CalendarConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Load resolves the configured calendar, fetches both event lists, filters to
// the target title, re-caps, and derives the day gaps. The past and upcoming
// fetches have no ordering dependency and run concurrently.
func (p *Pipeline) Load(ctx context.Context, svc *Service) (Lists, error) {
	cal, err := svc.FindByName(ctx, p.cfg.Name)
	if err != nil {
		return Lists{}, err
	}
	if cal == nil {
		return Lists{}, ErrCalendarNotFound
	}

	var past, upcoming []Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		past, err = svc.RecentPast(gctx, cal.ID, p.cfg.PastLimit)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = svc.Upcoming(gctx, cal.ID, p.cfg.UpcomingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Lists{}, err
	}

	past = capList(FilterByTitle(past, p.cfg.EventTitle), presentedPastMax)
	upcoming = capList(FilterByTitle(upcoming, p.cfg.EventTitle), presentedUpcomingMax)

	log.LogDebugWithFields("calendar", "Pipeline loaded", map[string]any{
		"calendar": cal.Summary,
		"past":     len(past),
		"upcoming": len(upcoming),
	})

	pastEntries, upcomingEntries := DayGaps(past, upcoming)
	return Lists{Past: pastEntries, Upcoming: upcomingEntries}, nil
}

func capList(events []Event, max int) []Event {
	if len(events) > max {
		return events[:max]
	}
	return events
}
