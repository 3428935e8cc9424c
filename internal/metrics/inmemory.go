package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SubscriptionsAccepted    uint64
	SubscriptionsInvalid     uint64
	SubscriptionsDuplicate   uint64
	SubscriptionsFailed      uint64
	SubscriptionsRateLimited uint64
	SubscribeDurationCount   uint64
	SubscribeDurationTotalNs int64
	AnalyticsEventsPublished uint64
	AnalyticsEventsDropped   uint64
	WelcomeMailsSent         uint64
	WelcomeMailsFailed       uint64
}

// InMemoryRecorder keeps counters in memory. It backs GET /metrics.
type InMemoryRecorder struct {
	accepted        uint64
	invalid         uint64
	duplicate       uint64
	failed          uint64
	rateLimited     uint64
	durationCount   uint64
	durationTotalNs int64
	eventsPublished uint64
	eventsDropped   uint64
	mailsSent       uint64
	mailsFailed     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SubscriptionsAccepted:    atomic.LoadUint64(&m.accepted),
		SubscriptionsInvalid:     atomic.LoadUint64(&m.invalid),
		SubscriptionsDuplicate:   atomic.LoadUint64(&m.duplicate),
		SubscriptionsFailed:      atomic.LoadUint64(&m.failed),
		SubscriptionsRateLimited: atomic.LoadUint64(&m.rateLimited),
		SubscribeDurationCount:   atomic.LoadUint64(&m.durationCount),
		SubscribeDurationTotalNs: atomic.LoadInt64(&m.durationTotalNs),
		AnalyticsEventsPublished: atomic.LoadUint64(&m.eventsPublished),
		AnalyticsEventsDropped:   atomic.LoadUint64(&m.eventsDropped),
		WelcomeMailsSent:         atomic.LoadUint64(&m.mailsSent),
		WelcomeMailsFailed:       atomic.LoadUint64(&m.mailsFailed),
	}
}

// IncSubscriptionAccepted increments the accepted counter.
func (m *InMemoryRecorder) IncSubscriptionAccepted() {
	atomic.AddUint64(&m.accepted, 1)
}

// IncSubscriptionRejected increments the counter for reason.
// Unknown reasons count as failures.
func (m *InMemoryRecorder) IncSubscriptionRejected(reason string) {
	switch reason {
	case ReasonInvalid:
		atomic.AddUint64(&m.invalid, 1)
	case ReasonDuplicate:
		atomic.AddUint64(&m.duplicate, 1)
	case ReasonRateLimited:
		atomic.AddUint64(&m.rateLimited, 1)
	default:
		atomic.AddUint64(&m.failed, 1)
	}
}

// ObserveSubscribeDuration records how long a subscribe call took.
func (m *InMemoryRecorder) ObserveSubscribeDuration(duration time.Duration) {
	atomic.AddUint64(&m.durationCount, 1)
	atomic.AddInt64(&m.durationTotalNs, duration.Nanoseconds())
}

// IncAnalyticsEventPublished counts analytics publishes by status.
func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncWelcomeMail counts welcome mails by status.
func (m *InMemoryRecorder) IncWelcomeMail(status string) {
	if status == "sent" {
		atomic.AddUint64(&m.mailsSent, 1)
		return
	}
	atomic.AddUint64(&m.mailsFailed, 1)
}
