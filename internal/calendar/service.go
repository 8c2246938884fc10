package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/calfront/calfront/internal/log"
)

// Service wraps the provider's calendar API for one bearer token.
type Service struct {
	svc *gcal.Service
	now func() time.Time
}

// NewService creates a calendar service authenticated with the opaque bearer
// token from the session cookie. Fails with ErrUnauthenticated when the token
// is empty; the token is never validated here, only forwarded.
func NewService(ctx context.Context, token string, opts ...option.ClientOption) (*Service, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	all := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, opts...)

	svc, err := gcal.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &Service{svc: svc, now: time.Now}, nil
}

// ListCalendars returns all calendars the token can read.
func (s *Service) ListCalendars(ctx context.Context) ([]Calendar, error) {
	resp, err := s.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, providerError("listing calendars", err)
	}

	calendars := make([]Calendar, 0, len(resp.Items))
	for _, item := range resp.Items {
		calendars = append(calendars, Calendar{ID: item.Id, Summary: item.Summary})
	}
	return calendars, nil
}

// FindByName resolves a calendar by exact summary match.
func (s *Service) FindByName(ctx context.Context, name string) (*Calendar, error) {
	calendars, err := s.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}
	for _, cal := range calendars {
		if cal.Summary == name {
			return &cal, nil
		}
	}
	return nil, nil
}

// Query constrains an event fetch. Zero values leave the corresponding
// provider parameter unset.
type Query struct {
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
}

// Events fetches single, time-expanded occurrences ordered by start time
// ascending. Events whose times cannot be parsed are skipped, not fatal.
func (s *Service) Events(ctx context.Context, calendarID string, q Query) ([]Event, error) {
	call := s.svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !q.TimeMin.IsZero() {
		call = call.TimeMin(q.TimeMin.Format(time.RFC3339))
	}
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, providerError("listing events", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		event, err := fromProviderEvent(item)
		if err != nil {
			log.LogDebugWithFields("calendar", "Skipping unparseable event", map[string]any{
				"error": err.Error(),
			})
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// RecentPast returns events starting at or before now, capped at limit, then
// reversed so index 0 is the most recent past event. The underlying fetch
// stays chronological; only the presentation order flips.
func (s *Service) RecentPast(ctx context.Context, calendarID string, limit int64) ([]Event, error) {
	events, err := s.Events(ctx, calendarID, Query{TimeMax: s.now(), MaxResults: limit})
	if err != nil {
		return nil, err
	}
	slices.Reverse(events)
	return events, nil
}

// Upcoming returns events starting at or after now in chronological,
// soonest-first order, capped at limit.
func (s *Service) Upcoming(ctx context.Context, calendarID string, limit int64) ([]Event, error) {
	return s.Events(ctx, calendarID, Query{TimeMin: s.now(), MaxResults: limit})
}

func providerError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ProviderError{Op: op, StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("%s: %w", op, err)
}
