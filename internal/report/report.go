// Package report forwards unexpected errors and recovered panics to Sentry.
// A Reporter without a DSN discards everything.
package report

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/raven-go"
)

// Reporter captures errors. The zero value and a nil *Reporter are no-ops.
type Reporter struct {
	client *raven.Client
}

// New returns a Reporter for dsn. An empty dsn disables reporting.
func New(dsn, environment string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}

	client, err := raven.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}
	client.SetEnvironment(environment)
	return &Reporter{client: client}, nil
}

// Enabled reports whether errors are forwarded.
func (r *Reporter) Enabled() bool {
	return r != nil && r.client != nil
}

// CaptureError sends err with optional tags.
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	r.client.CaptureError(err, tags)
}

// CapturePanic sends a recovered panic value along with the request it
// interrupted.
func (r *Reporter) CapturePanic(rval interface{}, req *http.Request) {
	if !r.Enabled() {
		return
	}

	err, ok := rval.(error)
	if !ok {
		err = errors.New(fmt.Sprint(rval))
	}

	packet := raven.NewPacket(err.Error(),
		raven.NewException(err, raven.GetOrNewStacktrace(err, 2, 3, nil)),
		raven.NewHttp(req),
	)
	r.client.Capture(packet, nil)
}

// Close flushes pending events.
func (r *Reporter) Close() {
	if !r.Enabled() {
		return
	}
	r.client.Wait()
	r.client.Close()
}
