package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pysugar/family-calendar/internal/auth/credential"
)

// CredentialSource provides the current credential for a listing call.
// Satisfied by *credential.Manager.
type CredentialSource interface {
	Credential() *credential.Credential
}

// GoogleClient implements Client against the Google Calendar v3 API.
type GoogleClient struct {
	creds CredentialSource
}

// NewGoogleClient returns a client that reads the credential from creds on
// every call, so a refresh between calls is picked up automatically.
func NewGoogleClient(creds CredentialSource) *GoogleClient {
	return &GoogleClient{creds: creds}
}

func (c *GoogleClient) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	cred := c.creds.Credential()
	if cred == nil {
		return nil, ErrUnauthorized
	}

	// Static token source: refresh is owned by the credential manager, not
	// the transport.
	svc, err := gcal.NewService(ctx,
		option.WithTokenSource(oauth2.StaticTokenSource(cred.Token())))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	resp, err := svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		if isAuthError(err) {
			return nil, fmt.Errorf("list events: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Start == nil || item.End == nil {
			continue
		}
		events = append(events, Event{
			Summary:     item.Summary,
			Start:       EventTime{DateTime: item.Start.DateTime, Date: item.Start.Date},
			End:         EventTime{DateTime: item.End.DateTime, Date: item.End.Date},
			Location:    item.Location,
			Description: item.Description,
		})
	}
	return events, nil
}

// isAuthError reports whether the API rejected the credential, as opposed
// to a transport or request failure.
func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}
