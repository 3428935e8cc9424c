package main

import (
	"errors"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://app:hunter2@db:5432/waitlist", "postgres://app@db:5432/waitlist"},
		{"redis://:hunter2@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://app:hunter2@db:5432/waitlist"
	err := errors.New("cannot connect to " + dsn + " (password=hunter2)")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug").String() != "DEBUG" {
		t.Error("debug not parsed")
	}
	if parseLogLevel("bogus").String() != "INFO" {
		t.Error("unknown level should default to INFO")
	}
}
