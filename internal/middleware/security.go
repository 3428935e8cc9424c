package middleware

import (
	"net/http"
	"strings"
)

// apiCSP locks down JSON responses completely.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// pageCSP lets the landing page load its own assets and the analytics tag.
const pageCSP = "default-src 'self'; " +
	"script-src 'self' https://www.googletagmanager.com; " +
	"connect-src 'self' https://www.google-analytics.com https://*.google-analytics.com; " +
	"img-src 'self' data: https://www.google-analytics.com; " +
	"style-src 'self' 'unsafe-inline'; " +
	"frame-ancestors 'none'"

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
	// APIPrefix marks JSON routes; they get a no-content CSP and no-store.
	// Empty treats every route as API.
	APIPrefix string
}

// Security applies security headers to all responses.
//
// JSON routes get a deny-all CSP and Cache-Control: no-store. Other routes
// (the static landing page) get a CSP that allows same-origin assets and
// Google Analytics.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")

			if !cfg.IsDevelopment {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			if isAPIPath(cfg.APIPrefix, r.URL.Path) {
				h.Set("Content-Security-Policy", apiCSP)
				h.Set("Cache-Control", "no-store")
			} else {
				h.Set("Content-Security-Policy", pageCSP)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAPIPath(prefix, path string) bool {
	return prefix == "" || strings.HasPrefix(path, prefix)
}

// MaxBodySize limits request bodies to maxBytes. A declared Content-Length
// over the limit is refused with 413; a streamed body is cut off by
// http.MaxBytesReader and the handler sees a read error.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge,
					"Payload too large", "Request body too large")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
