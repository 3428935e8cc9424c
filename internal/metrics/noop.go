package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSubscriptionAccepted()                        {}
func (n *NoopRecorder) IncSubscriptionRejected(reason string)           {}
func (n *NoopRecorder) ObserveSubscribeDuration(duration time.Duration) {}
func (n *NoopRecorder) IncAnalyticsEventPublished(status string)        {}
func (n *NoopRecorder) IncWelcomeMail(status string)                    {}
