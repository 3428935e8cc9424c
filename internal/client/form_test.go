package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partygames/waitlist/internal/analytics"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	sub   *Subscription
	err   error
}

func (b *fakeBackend) Subscribe(_ context.Context, email string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, email)
	return b.sub, b.err
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []Toast
}

func (n *recordingNotifier) Notify(t Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, t)
}

func (n *recordingNotifier) last() Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.toasts[len(n.toasts)-1]
}

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recordingTracker) Track(e analytics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingTracker) last() analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type panickingTracker struct{}

func (panickingTracker) Track(analytics.Event) { panic("analytics unavailable") }

func newTestForm(backend Backend, opts ...FormOption) (*Form, *recordingNotifier, *recordingTracker) {
	n := &recordingNotifier{}
	tr := &recordingTracker{}
	opts = append([]FormOption{WithNotifier(n), WithTracker(tr)}, opts...)
	return NewForm(backend, opts...), n, tr
}

func TestNewForm_TracksPageView(t *testing.T) {
	_, _, tr := newTestForm(&fakeBackend{}, WithPagePath("/coming-soon"))

	e := tr.last()
	assert.Equal(t, analytics.EventPageView, e.Name)
	assert.Equal(t, PageTitle, e.PageTitle)
	assert.Equal(t, "/coming-soon", e.PagePath)
}

func TestSubmit_LocalValidation(t *testing.T) {
	for _, email := range []string{"", "no-at-sign"} {
		t.Run(email, func(t *testing.T) {
			backend := &fakeBackend{}
			f, n, _ := newTestForm(backend)
			defer f.Close()

			f.SetEmail(email)
			err := f.Submit(context.Background())

			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, 0, backend.callCount(), "no request must be sent")
			assert.Equal(t, Toast{Title: "Invalid email", Description: "Please enter a valid email address.", Destructive: true}, n.last())
			assert.Equal(t, email, f.Email())
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	backend := &fakeBackend{sub: &Subscription{ID: "1", Email: "a@b.com", Message: "Successfully subscribed to the waitlist!"}}
	f, n, tr := newTestForm(backend, WithResetDelay(50*time.Millisecond))
	defer f.Close()

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, "", f.Email())
	assert.True(t, f.Subscribed())
	assert.Equal(t, "Successfully subscribed!", n.last().Title)
	assert.Equal(t, "Successfully subscribed to the waitlist!", n.last().Description)

	e := tr.last()
	assert.Equal(t, analytics.StatusSuccess, e.Status)
	assert.Equal(t, "b.com", e.EmailDomain)

	assert.Eventually(t, func() bool { return !f.Subscribed() }, time.Second, 10*time.Millisecond)
}

func TestSubmit_SuccessWithoutMessageUsesDefault(t *testing.T) {
	f, n, _ := newTestForm(&fakeBackend{sub: &Subscription{ID: "1"}})
	defer f.Close()

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "We'll notify you when Party Games launches.", n.last().Description)
}

func TestClose_CancelsReset(t *testing.T) {
	f, _, _ := newTestForm(&fakeBackend{sub: &Subscription{ID: "1"}}, WithResetDelay(20*time.Millisecond))

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))
	f.Close()

	time.Sleep(80 * time.Millisecond)
	assert.True(t, f.Subscribed(), "reset must not fire after Close")

	assert.ErrorIs(t, f.Submit(context.Background()), ErrFormClosed)
}

func TestSubmit_SecondSuccessRearmsReset(t *testing.T) {
	f, _, _ := newTestForm(&fakeBackend{sub: &Subscription{ID: "1"}}, WithResetDelay(100*time.Millisecond))
	defer f.Close()

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))
	time.Sleep(60 * time.Millisecond)

	f.SetEmail("c@d.com")
	require.NoError(t, f.Submit(context.Background()))
	time.Sleep(60 * time.Millisecond)

	assert.True(t, f.Subscribed(), "first timer must not clear the second success")
	assert.Eventually(t, func() bool { return !f.Subscribed() }, time.Second, 10*time.Millisecond)
}

func TestSubmit_ServerRejection(t *testing.T) {
	apiErr := &APIError{StatusCode: 409, Err: "Email already subscribed", Message: "This email is already on our waitlist!"}
	f, n, tr := newTestForm(&fakeBackend{err: apiErr})
	defer f.Close()

	f.SetEmail("a@b.com")
	err := f.Submit(context.Background())

	var got *APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, Toast{Title: "Email already subscribed", Description: "This email is already on our waitlist!", Destructive: true}, n.last())
	assert.Equal(t, "a@b.com", f.Email(), "input is kept on failure")
	assert.False(t, f.Subscribed())

	e := tr.last()
	assert.Equal(t, analytics.StatusError, e.Status)
	assert.Equal(t, "Email already subscribed", e.ErrorMessage)
}

func TestSubmit_ServerRejectionWithoutText(t *testing.T) {
	f, n, _ := newTestForm(&fakeBackend{err: &APIError{StatusCode: 500}})
	defer f.Close()

	f.SetEmail("a@b.com")
	_ = f.Submit(context.Background())

	assert.Equal(t, "Subscription failed", n.last().Title)
	assert.Equal(t, "Something went wrong. Please try again.", n.last().Description)
}

func TestSubmit_NetworkError(t *testing.T) {
	f, n, tr := newTestForm(&fakeBackend{err: errors.New("dial tcp: connection refused")})
	defer f.Close()

	f.SetEmail("a@b.com")
	err := f.Submit(context.Background())

	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, Toast{Title: "Network error", Description: "Unable to connect. Please check your internet and try again.", Destructive: true}, n.last())
	assert.Equal(t, analytics.StatusNetworkError, tr.last().Status)
}

func TestSubmit_TrackerPanicIsIgnored(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForm(&fakeBackend{sub: &Subscription{ID: "1"}}, WithNotifier(n), WithTracker(panickingTracker{}))
	defer f.Close()

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "Successfully subscribed!", n.last().Title)
}

func TestSubmit_NoNotifierOrTracker(t *testing.T) {
	f := NewForm(&fakeBackend{sub: &Subscription{ID: "1"}})
	defer f.Close()

	f.SetEmail("a@b.com")
	require.NoError(t, f.Submit(context.Background()))
	assert.True(t, f.Subscribed())
}
