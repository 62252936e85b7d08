// Package today orchestrates the single use case "list today's enriched
// events": credential check, calendar listing in the server-local day
// window, enrichment, and the 401-triggered refresh-and-retry path.
package today

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pysugar/family-calendar/internal/calendar"
	"github.com/pysugar/family-calendar/internal/travel"
)

// CredentialManager is the slice of the credential manager the service
// needs. Satisfied by *credential.Manager.
type CredentialManager interface {
	IsAuthenticated() bool
	Refresh(ctx context.Context) error
	Invalidate()
}

// Service answers the "today's events" query.
type Service struct {
	creds      CredentialManager
	client     calendar.Client
	estimator  travel.Estimator
	calendarID string

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewService wires the query service.
func NewService(creds CredentialManager, client calendar.Client, estimator travel.Estimator, calendarID string) *Service {
	return &Service{
		creds:      creds,
		client:     client,
		estimator:  estimator,
		calendarID: calendarID,
		now:        time.Now,
	}
}

// FetchToday returns the enriched events for the server's local day,
// ordered by start time. On an authorization failure it refreshes the
// credential and retries exactly once; a second consecutive authorization
// failure is fatal for the request. The result is all-or-nothing: no
// partial event lists.
func (s *Service) FetchToday(ctx context.Context) ([]EventRecord, error) {
	if !s.creds.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	now := s.now()
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := s.client.ListEvents(ctx, s.calendarID, dayStart, dayEnd)
	if err != nil {
		if !errors.Is(err, calendar.ErrUnauthorized) {
			return nil, &FetchError{Err: err}
		}

		// One refresh, one retry; the retry path cannot reach this branch
		// again.
		log.Printf("🔄 Access token rejected, refreshing credential")
		if rerr := s.creds.Refresh(ctx); rerr != nil {
			return nil, ErrCredentialExpired
		}
		events, err = s.client.ListEvents(ctx, s.calendarID, dayStart, dayEnd)
		if err != nil {
			if errors.Is(err, calendar.ErrUnauthorized) {
				s.creds.Invalidate()
				return nil, ErrCredentialExpired
			}
			return nil, &FetchError{Err: err}
		}
	}

	records := make([]EventRecord, 0, len(events))
	for _, ev := range events {
		rec, err := s.enrich(ev, loc)
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}
