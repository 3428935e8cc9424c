// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Rejection reasons for IncSubscriptionRejected.
const (
	ReasonInvalid     = "invalid"
	ReasonDuplicate   = "duplicate"
	ReasonError       = "error"
	ReasonRateLimited = "rate_limited"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Subscription metrics
	IncSubscriptionAccepted()
	IncSubscriptionRejected(reason string)
	ObserveSubscribeDuration(duration time.Duration)

	// Side-effect metrics
	IncAnalyticsEventPublished(status string) // status: "success" or "dropped"
	IncWelcomeMail(status string)             // status: "sent" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
