package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/partygames/waitlist/internal/analytics"
	"github.com/partygames/waitlist/internal/model"
)

// DefaultResetDelay is how long the "just subscribed" state lasts.
const DefaultResetDelay = 3 * time.Second

// PageTitle is reported with the page view event.
const PageTitle = "Party Games - Coming Soon"

// Toast texts.
const (
	titleInvalid = "Invalid email"
	descInvalid  = "Please enter a valid email address."
	titleSuccess = "Successfully subscribed!"
	descSuccess  = "We'll notify you when Party Games launches."
	titleFailed  = "Subscription failed"
	descFailed   = "Something went wrong. Please try again."
	titleNetwork = "Network error"
	descNetwork  = "Unable to connect. Please check your internet and try again."
)

var (
	// ErrInvalidInput is returned when the email fails the local check and
	// no request was sent.
	ErrInvalidInput = errors.New("invalid email")

	// ErrFormClosed is returned by Submit after Close.
	ErrFormClosed = errors.New("form closed")
)

// Toast is a user-visible notification.
type Toast struct {
	Title       string
	Description string
	Destructive bool
}

// Notifier displays toasts.
type Notifier interface {
	Notify(t Toast)
}

// Tracker receives analytics events. Implementations may fail; the form
// ignores their errors and panics.
type Tracker interface {
	Track(e analytics.Event)
}

// Backend performs the subscribe call. *API implements it.
type Backend interface {
	Subscribe(ctx context.Context, email string) (*Subscription, error)
}

// Form holds the state of the waitlist form: the input text and the
// transient "just subscribed" flag.
type Form struct {
	backend    Backend
	notifier   Notifier
	tracker    Tracker
	resetDelay time.Duration
	now        func() time.Time
	pagePath   string

	mu         sync.Mutex
	email      string
	subscribed bool
	closed     bool
	timer      *time.Timer
	generation uint64
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithNotifier sets where toasts go.
func WithNotifier(n Notifier) FormOption {
	return func(f *Form) { f.notifier = n }
}

// WithTracker sets the analytics tracker.
func WithTracker(t Tracker) FormOption {
	return func(f *Form) { f.tracker = t }
}

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) FormOption {
	return func(f *Form) { f.resetDelay = d }
}

// WithPagePath sets the path reported with the page view.
func WithPagePath(path string) FormOption {
	return func(f *Form) { f.pagePath = path }
}

// NewForm creates a form and records a page view.
func NewForm(backend Backend, opts ...FormOption) *Form {
	f := &Form{
		backend:    backend,
		resetDelay: DefaultResetDelay,
		now:        time.Now,
		pagePath:   "/",
	}
	for _, opt := range opts {
		opt(f)
	}

	f.track(analytics.PageView(PageTitle, f.pagePath, f.now()))
	return f
}

// SetEmail replaces the input text.
func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

// Email returns the input text.
func (f *Form) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Subscribed reports whether a subscription succeeded within the reset delay.
func (f *Form) Subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed
}

// Submit sends the current input.
//
// The input must be non-empty and contain "@", otherwise ErrInvalidInput is
// returned without a request. On success the input is cleared and the
// subscribed flag is set until the reset delay passes. Server rejections are
// returned as *APIError; anything else wraps ErrNetwork.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFormClosed
	}
	email := f.email
	f.mu.Unlock()

	if email == "" || !strings.Contains(email, "@") {
		f.notify(Toast{Title: titleInvalid, Description: descInvalid, Destructive: true})
		return ErrInvalidInput
	}

	sub, err := f.backend.Subscribe(ctx, email)
	if err == nil {
		f.succeeded(email, sub)
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		f.track(analytics.SubscriptionFailed(apiErr.Err, f.now()))
		f.notify(Toast{
			Title:       orDefault(apiErr.Err, titleFailed),
			Description: orDefault(apiErr.Message, descFailed),
			Destructive: true,
		})
		return apiErr
	}

	f.track(analytics.SubscriptionNetworkError(f.now()))
	f.notify(Toast{Title: titleNetwork, Description: descNetwork, Destructive: true})
	if errors.Is(err, ErrNetwork) {
		return err
	}
	return errors.Join(ErrNetwork, err)
}

// Close cancels a pending reset. The form rejects submissions afterwards.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Form) succeeded(email string, sub *Subscription) {
	f.mu.Lock()
	if !f.closed {
		f.email = ""
		f.subscribed = true
		f.generation++
		gen := f.generation
		if f.timer != nil {
			f.timer.Stop()
		}
		f.timer = time.AfterFunc(f.resetDelay, func() { f.reset(gen) })
	}
	f.mu.Unlock()

	f.track(analytics.SubscriptionSucceeded(model.EmailDomain(email), f.now()))

	message := ""
	if sub != nil {
		message = sub.Message
	}
	f.notify(Toast{Title: titleSuccess, Description: orDefault(message, descSuccess)})
}

// reset clears the flag unless a newer success re-armed the timer.
func (f *Form) reset(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.generation {
		return
	}
	f.subscribed = false
	f.timer = nil
}

func (f *Form) track(e analytics.Event) {
	if f.tracker == nil {
		return
	}
	defer func() { _ = recover() }()
	f.tracker.Track(e)
}

func (f *Form) notify(t Toast) {
	if f.notifier == nil {
		return
	}
	f.notifier.Notify(t)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
