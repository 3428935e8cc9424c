// Package client talks to the waitlist API and drives the landing page's
// subscription form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/partygames/waitlist/internal/handler/dto"
)

// ErrNetwork marks a request that never produced a usable response: the
// transport failed or the body was not the expected JSON.
var ErrNetwork = errors.New("network error")

// APIError is a structured error returned by the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%d: %s: %s", e.StatusCode, e.Err, e.Message)
}

// Subscription is the record returned by a successful subscribe call.
type Subscription struct {
	ID      string
	Email   string
	Message string
}

// Subscriber is one entry of the waitlist.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// SubscriberList is the body of GET /api/subscribers.
type SubscriberList struct {
	Count       int          `json:"count"`
	Subscribers []Subscriber `json:"subscribers"`
}

// API is an HTTP client for the waitlist endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
	adminToken string
}

// Option configures an API.
type Option func(*API)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.httpClient = c }
}

// WithAdminToken sets the bearer token sent by List.
func WithAdminToken(token string) Option {
	return func(a *API) { a.adminToken = token }
}

// New returns an API for the server at baseURL, e.g. https://partygames.app.
func New(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe posts email to /api/subscribe. A non-2xx answer is returned as
// *APIError.
func (a *API) Subscribe(ctx context.Context, email string) (*Subscription, error) {
	payload, err := json.Marshal(dto.SubscribeRequest{Email: email})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/subscribe", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var body dto.SubscribeResponse
	if err := a.do(req, &body); err != nil {
		return nil, err
	}

	return &Subscription{
		ID:      body.Subscriber.ID,
		Email:   body.Subscriber.Email,
		Message: body.Message,
	}, nil
}

// List fetches every subscriber in insertion order.
func (a *API) List(ctx context.Context) (*SubscriberList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/subscribers", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.adminToken)
	}

	var list SubscriberList
	if err := a.do(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// do sends req and decodes a JSON body into out on 2xx, or into *APIError
// otherwise.
func (a *API) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			return fmt.Errorf("%w: status %d with unreadable body", ErrNetwork, resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}
