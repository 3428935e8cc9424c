// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/partygames/waitlist/internal/model"
)

// Response texts shown to visitors by the landing page.
const (
	ErrInvalidEmail      = "Invalid email format"
	MsgInvalidEmail      = "Please enter a valid email address"
	ErrAlreadySubscribed = "Email already subscribed"
	MsgAlreadySubscribed = "This email is already on our waitlist!"
	ErrInternal          = "Internal server error"
	MsgInternal          = "Something went wrong. Please try again."
	MsgSubscribed        = "Successfully subscribed to the waitlist!"
)

// timestampLayout renders UTC timestamps with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// SubscribeRequest is the documented body of POST /api/subscribe.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// SubscriberRef identifies the subscriber created by a request.
type SubscriberRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SubscribeResponse is the 201 body of POST /api/subscribe.
type SubscribeResponse struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Subscriber SubscriberRef `json:"subscriber"`
}

// SubscriberResponse is one entry of GET /api/subscribers.
type SubscriberResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	SubscribedAt string `json:"subscribedAt"`
}

// SubscriberListResponse is the body of GET /api/subscribers.
type SubscriberListResponse struct {
	Count       int                  `json:"count"`
	Subscribers []SubscriberResponse `json:"subscribers"`
}

// ErrorResponse is the body of every error. Message is omitted when empty.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ToSubscribeResponse builds the 201 body for a new subscriber.
func ToSubscribeResponse(s *model.Subscriber) SubscribeResponse {
	return SubscribeResponse{
		Success:    true,
		Message:    MsgSubscribed,
		Subscriber: SubscriberRef{ID: s.ID, Email: s.Email},
	}
}

// ToSubscriberListResponse converts subscribers, keeping their order.
func ToSubscriberListResponse(subs []*model.Subscriber) SubscriberListResponse {
	out := make([]SubscriberResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, SubscriberResponse{
			ID:           s.ID,
			Email:        s.Email,
			SubscribedAt: FormatTimestamp(s.SubscribedAt),
		})
	}
	return SubscriberListResponse{Count: len(out), Subscribers: out}
}

// FormatTimestamp renders t as an ISO-8601 UTC string, e.g.
// 2025-01-31T09:15:00.123Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
