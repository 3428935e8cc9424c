package report

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestNew_EmptyDSNDisables(t *testing.T) {
	r, err := New("", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Enabled() {
		t.Fatal("expected reporter to be disabled without a DSN")
	}

	// Must not panic.
	r.CaptureError(errors.New("boom"), map[string]string{"k": "v"})
	r.CapturePanic("boom", httptest.NewRequest("GET", "/", nil))
	r.Close()
}

func TestNilReporter(t *testing.T) {
	var r *Reporter
	if r.Enabled() {
		t.Fatal("nil reporter must be disabled")
	}
	r.CaptureError(errors.New("boom"), nil)
	r.CapturePanic(errors.New("boom"), httptest.NewRequest("GET", "/", nil))
	r.Close()
}

func TestNew_InvalidDSN(t *testing.T) {
	if _, err := New("://not-a-dsn", "test"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
