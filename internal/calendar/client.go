// Package calendar adapts the Google Calendar API to the small listing
// contract the dashboard needs.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthorized signals that the remote service rejected the credential.
// The today service distinguishes it from other failures to drive the
// refresh-and-retry path.
var ErrUnauthorized = errors.New("calendar authorization rejected")

// EventTime mirrors the API's date-or-datetime representation. Exactly one
// of DateTime (RFC 3339) or Date (all-day, "2006-01-02") is set.
type EventTime struct {
	DateTime string
	Date     string
}

// Event is a raw calendar event as returned by the listing call. Produced
// per request, never cached.
type Event struct {
	Summary     string
	Start       EventTime
	End         EventTime
	Location    string
	Description string
}

// Client lists raw events in a time range, recurring instances expanded
// and ordered by start time.
type Client interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)
}
