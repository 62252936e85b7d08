package today

import (
	"fmt"
	"log"
	"time"

	"github.com/pysugar/family-calendar/internal/calendar"
	"github.com/pysugar/family-calendar/internal/travel"
)

// NoLocation is the display value for events without a location.
const NoLocation = "No location specified"

// EventRecord is the display-ready projection of a raw calendar event.
type EventRecord struct {
	Summary         string           `json:"summary"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	DisplayTime     string           `json:"displayTime"`
	DurationMinutes int              `json:"durationMinutes"`
	Location        string           `json:"location"`
	TravelEstimate  *travel.Estimate `json:"travelEstimate"`
	Description     string           `json:"description"`
}

// enrich transforms a raw event into an EventRecord. Pure except for the
// travel-estimate delegate call, whose failure degrades to a nil estimate
// rather than failing the event.
func (s *Service) enrich(ev calendar.Event, loc *time.Location) (EventRecord, error) {
	start, err := parseEventTime(ev.Start, loc)
	if err != nil {
		return EventRecord{}, fmt.Errorf("event %q start: %w", ev.Summary, err)
	}
	end, err := parseEventTime(ev.End, loc)
	if err != nil {
		return EventRecord{}, fmt.Errorf("event %q end: %w", ev.Summary, err)
	}

	rec := EventRecord{
		Summary:         ev.Summary,
		Start:           start,
		End:             end,
		DisplayTime:     start.In(loc).Format("15:04"),
		DurationMinutes: int(end.Sub(start).Minutes()),
		Location:        NoLocation,
		Description:     ev.Description,
	}

	if ev.Location != "" {
		rec.Location = ev.Location
		rec.TravelEstimate = s.safeEstimate(ev.Location)
	}
	return rec, nil
}

// safeEstimate shields the request from a misbehaving estimator delegate.
func (s *Service) safeEstimate(location string) (est *travel.Estimate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Travel estimate failed for %q: %v", location, r)
			est = nil
		}
	}()
	e := s.estimator.Estimate(location)
	return &e
}

// parseEventTime resolves the API's date-or-datetime representation.
// All-day events use date-only boundaries in the server's local zone.
func parseEventTime(t calendar.EventTime, loc *time.Location) (time.Time, error) {
	switch {
	case t.DateTime != "":
		return time.Parse(time.RFC3339, t.DateTime)
	case t.Date != "":
		return time.ParseInLocation("2006-01-02", t.Date, loc)
	default:
		return time.Time{}, fmt.Errorf("event time has neither date nor dateTime")
	}
}
