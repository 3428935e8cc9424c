// Package service implements the waitlist business logic between the HTTP
// handlers and the subscriber store.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/partygames/waitlist/internal/analytics"
	"github.com/partygames/waitlist/internal/metrics"
	"github.com/partygames/waitlist/internal/model"
	"github.com/partygames/waitlist/internal/repository"
)

// ErrAlreadySubscribed is returned when the email is already on the waitlist.
var ErrAlreadySubscribed = errors.New("email already subscribed")

// Event error labels sent with failed subscription events.
const (
	failureInvalid   = "invalid_email"
	failureDuplicate = "already_subscribed"
	failureInternal  = "internal_error"
)

// DefaultMailTimeout bounds a single welcome mail delivery.
const DefaultMailTimeout = 15 * time.Second

// WelcomeSender delivers the welcome message to a new subscriber.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to string) error
}

// SubscriptionService adds and lists waitlist subscribers.
type SubscriptionService struct {
	store       repository.SubscriberStore
	events      analytics.Sink
	mail        WelcomeSender
	mailTimeout time.Duration
	metrics     metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time

	pending sync.WaitGroup
}

// Option configures a SubscriptionService.
type Option func(*SubscriptionService)

// WithEvents sets the analytics sink.
func WithEvents(sink analytics.Sink) Option {
	return func(s *SubscriptionService) { s.events = sink }
}

// WithWelcomeMail enables the welcome message. A nil sender disables it.
func WithWelcomeMail(sender WelcomeSender, timeout time.Duration) Option {
	return func(s *SubscriptionService) {
		s.mail = sender
		if timeout > 0 {
			s.mailTimeout = timeout
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *SubscriptionService) { s.metrics = recorder }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SubscriptionService) { s.logger = logger }
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(store repository.SubscriberStore, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		store:       store,
		events:      analytics.NoopSink{},
		mailTimeout: DefaultMailTimeout,
		metrics:     metrics.NewNoop(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = analytics.NoopSink{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	return s
}

// SubscribeRequest decodes a request body and subscribes the email it
// carries. An unreadable body counts as invalid input.
func (s *SubscriptionService) SubscribeRequest(ctx context.Context, body io.Reader) (*model.Subscriber, error) {
	req, err := DecodeSubscribeRequest(body)
	if err != nil {
		s.reject(metrics.ReasonInvalid, failureInvalid)
		return nil, err
	}
	return s.Subscribe(ctx, req.Email)
}

// Subscribe adds email to the waitlist.
//
// Returns ErrInvalidEmail for a malformed address and ErrAlreadySubscribed
// when the email is present, including when a concurrent request inserted it
// between the lookup and the insert. Any other error is unexpected.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSubscribeDuration(time.Since(start)) }()

	if err := ValidateEmail(email); err != nil {
		s.reject(metrics.ReasonInvalid, failureInvalid)
		return nil, err
	}

	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.reject(metrics.ReasonDuplicate, failureDuplicate)
		return nil, ErrAlreadySubscribed
	case !errors.Is(err, repository.ErrSubscriberNotFound):
		s.reject(metrics.ReasonError, failureInternal)
		return nil, fmt.Errorf("lookup subscriber: %w", err)
	}

	sub, err := s.store.Create(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.reject(metrics.ReasonDuplicate, failureDuplicate)
			return nil, ErrAlreadySubscribed
		}
		s.reject(metrics.ReasonError, failureInternal)
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	s.metrics.IncSubscriptionAccepted()
	s.events.PublishAsync(analytics.SubscriptionSucceeded(sub.EmailDomain(), s.now()))
	s.sendWelcome(sub.Email)

	return sub, nil
}

// List returns every subscriber in insertion order.
func (s *SubscriptionService) List(ctx context.Context) ([]*model.Subscriber, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	if subs == nil {
		subs = []*model.Subscriber{}
	}
	return subs, nil
}

// Wait blocks until in-flight welcome mails finish or ctx is done.
func (s *SubscriptionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SubscriptionService) reject(reason, label string) {
	s.metrics.IncSubscriptionRejected(reason)
	s.events.PublishAsync(analytics.SubscriptionFailed(label, s.now()))
}

func (s *SubscriptionService) sendWelcome(email string) {
	if s.mail == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.mailTimeout)
		defer cancel()

		if err := s.mail.SendWelcome(ctx, email); err != nil {
			s.logger.Warn("welcome mail failed",
				"email_domain", model.EmailDomain(email),
				"error", err,
			)
			s.metrics.IncWelcomeMail("failed")
			return
		}
		s.metrics.IncWelcomeMail("sent")
	}()
}
