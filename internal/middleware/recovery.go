package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/partygames/waitlist/internal/report"
)

// Recoverer recovers from handler panics, logs and reports them, and answers
// with the generic 500 body.
func Recoverer(logger *slog.Logger, reporter *report.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				reporter.CapturePanic(rvr, r)

				writeError(w, http.StatusInternalServerError,
					"Internal server error", "Something went wrong. Please try again.")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
