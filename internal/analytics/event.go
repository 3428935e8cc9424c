// Package analytics records waitlist funnel events.
//
// Event names and statuses mirror the dataLayer events pushed by the
// landing page so both sources can be joined downstream.
package analytics

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event names.
const (
	EventPageView          = "page_view"
	EventEmailSubscription = "email_subscription"
)

// Subscription statuses.
const (
	StatusSuccess      = "success"
	StatusError        = "error"
	StatusNetworkError = "network_error"
)

const maxFieldLength = 200

// Event is one funnel event.
type Event struct {
	ID           string `json:"id"`
	Name         string `json:"event"`
	Status       string `json:"subscription_status,omitempty"`
	EmailDomain  string `json:"email_domain,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	PageTitle    string `json:"page_title,omitempty"`
	PagePath     string `json:"page_path,omitempty"`
	OccurredAt   int64  `json:"t"` // Unix milliseconds
}

// NewEvent returns an event with a time-ordered id.
func NewEvent(name string, at time.Time) Event {
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		Name:       name,
		OccurredAt: at.UnixMilli(),
	}
}

// SubscriptionSucceeded builds the event for an accepted email.
func SubscriptionSucceeded(emailDomain string, at time.Time) Event {
	e := NewEvent(EventEmailSubscription, at)
	e.Status = StatusSuccess
	e.EmailDomain = truncate(emailDomain)
	return e
}

// SubscriptionFailed builds the event for a rejected email.
func SubscriptionFailed(errorMessage string, at time.Time) Event {
	e := NewEvent(EventEmailSubscription, at)
	e.Status = StatusError
	e.ErrorMessage = truncate(errorMessage)
	return e
}

// PageView builds the event for a landing page view.
func PageView(title, path string, at time.Time) Event {
	e := NewEvent(EventPageView, at)
	e.PageTitle = truncate(title)
	e.PagePath = truncate(path)
	return e
}

// SubscriptionNetworkError builds the event for a request that never got a
// usable response.
func SubscriptionNetworkError(at time.Time) Event {
	e := NewEvent(EventEmailSubscription, at)
	e.Status = StatusNetworkError
	return e
}

// Validate checks the fields a consumer relies on.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if _, err := ulid.ParseStrict(e.ID); err != nil {
		return errors.New("id must be a ULID")
	}
	switch e.Name {
	case EventPageView:
	case EventEmailSubscription:
		switch e.Status {
		case StatusSuccess, StatusError, StatusNetworkError:
		default:
			return errors.New("unknown subscription status")
		}
	default:
		return errors.New("unknown event name")
	}
	if e.OccurredAt <= 0 {
		return errors.New("occurred_at must be set")
	}
	if len(e.EmailDomain) > maxFieldLength || len(e.ErrorMessage) > maxFieldLength ||
		len(e.PageTitle) > maxFieldLength || len(e.PagePath) > maxFieldLength {
		return errors.New("field too long")
	}
	return nil
}

func truncate(s string) string {
	if len(s) > maxFieldLength {
		return s[:maxFieldLength]
	}
	return s
}
