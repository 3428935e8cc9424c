package handler

import (
	"fmt"
	"net/http"

	"github.com/partygames/waitlist/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "# TYPE waitlist_subscriptions_total counter\n")
	writeMetric(w, "waitlist_subscriptions_total{result=\"accepted\"} %d\n", snap.SubscriptionsAccepted)
	writeMetric(w, "waitlist_subscriptions_total{result=\"invalid\"} %d\n", snap.SubscriptionsInvalid)
	writeMetric(w, "waitlist_subscriptions_total{result=\"duplicate\"} %d\n", snap.SubscriptionsDuplicate)
	writeMetric(w, "waitlist_subscriptions_total{result=\"error\"} %d\n", snap.SubscriptionsFailed)
	writeMetric(w, "waitlist_subscriptions_total{result=\"rate_limited\"} %d\n", snap.SubscriptionsRateLimited)

	writeMetric(w, "# TYPE waitlist_subscribe_duration_seconds summary\n")
	writeMetric(w, "waitlist_subscribe_duration_seconds_count %d\n", snap.SubscribeDurationCount)
	writeMetric(w, "waitlist_subscribe_duration_seconds_sum %.6f\n", float64(snap.SubscribeDurationTotalNs)/1e9)

	writeMetric(w, "# TYPE waitlist_analytics_events_published_total counter\n")
	writeMetric(w, "waitlist_analytics_events_published_total{status=\"success\"} %d\n", snap.AnalyticsEventsPublished)
	writeMetric(w, "waitlist_analytics_events_published_total{status=\"dropped\"} %d\n", snap.AnalyticsEventsDropped)

	writeMetric(w, "# TYPE waitlist_welcome_mails_total counter\n")
	writeMetric(w, "waitlist_welcome_mails_total{status=\"sent\"} %d\n", snap.WelcomeMailsSent)
	writeMetric(w, "waitlist_welcome_mails_total{status=\"failed\"} %d\n", snap.WelcomeMailsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
