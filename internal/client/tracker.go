package client

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/partygames/waitlist/internal/analytics"
)

// LogTracker writes events to a structured logger.
type LogTracker struct {
	Logger *slog.Logger
}

// Track implements Tracker.
func (t LogTracker) Track(e analytics.Event) {
	t.Logger.Info("analytics event",
		"event", e.Name,
		"subscription_status", e.Status,
		"email_domain", e.EmailDomain,
		"error_message", e.ErrorMessage,
		"page_path", e.PagePath,
	)
}

// SinkTracker forwards events to an analytics sink such as the Redis stream
// publisher.
type SinkTracker struct {
	Sink analytics.Sink
}

// Track implements Tracker.
func (t SinkTracker) Track(e analytics.Event) {
	t.Sink.PublishAsync(e)
}

// WriterNotifier prints toasts as single lines.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (n WriterNotifier) Notify(t Toast) {
	prefix := "ok"
	if t.Destructive {
		prefix = "error"
	}
	_, _ = fmt.Fprintf(n.W, "%s: %s: %s\n", prefix, t.Title, t.Description)
}
