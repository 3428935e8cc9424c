package service

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"simple", "user@example.com", nil},
		{"plus_tag", "user+tag@sub.example.co", nil},
		{"apostrophe", "o'brien@example.ie", nil},
		{"uppercase_kept", "Alice@Example.COM", nil},
		{"dotted_local", "first.last@example.com", nil},
		{"hyphen_label", "a@my-host.example.org", nil},
		{"empty", "", ErrInvalidEmail},
		{"no_at", "not-an-email", ErrInvalidEmail},
		{"no_tld", "user@localhost", ErrInvalidEmail},
		{"short_tld", "user@example.c", ErrInvalidEmail},
		{"numeric_tld", "user@example.123", ErrInvalidEmail},
		{"leading_dot", ".user@example.com", ErrInvalidEmail},
		{"trailing_dot", "user.@example.com", ErrInvalidEmail},
		{"double_dot", "us..er@example.com", ErrInvalidEmail},
		{"label_starts_with_hyphen", "user@-example.com", ErrInvalidEmail},
		{"leading_space", " user@example.com", ErrInvalidEmail},
		{"trailing_space", "user@example.com ", ErrInvalidEmail},
		{"two_ats", "a@b@example.com", ErrInvalidEmail},
		{"too_long", strings.Repeat("a", 250) + "@example.com", ErrInvalidEmail},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateEmail(test.email)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ValidateEmail(%q) = %v, want %v", test.email, err, test.wantErr)
			}
		})
	}
}

func TestParseSubscribeRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantEmail string
		wantErr   error
	}{
		{"valid", `{"email":"user@example.com"}`, "user@example.com", nil},
		{"extra_fields_ignored", `{"email":"user@example.com","name":"x"}`, "user@example.com", nil},
		{"not_trimmed", `{"email":" user@example.com"}`, "", ErrInvalidEmail},
		{"missing_email", `{}`, "", ErrInvalidEmail},
		{"null_email", `{"email":null}`, "", ErrInvalidEmail},
		{"number_email", `{"email":42}`, "", ErrInvalidEmail},
		{"malformed_email", `{"email":"not-an-email"}`, "", ErrInvalidEmail},
		{"array_body", `["user@example.com"]`, "", ErrInvalidEmail},
		{"null_body", `null`, "", ErrInvalidEmail},
		{"empty_body", ``, "", ErrInvalidEmail},
		{"broken_json", `{"email":`, "", ErrInvalidEmail},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req, err := ParseSubscribeRequest([]byte(test.body))
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if req.Email != test.wantEmail {
				t.Errorf("email = %q, want %q", req.Email, test.wantEmail)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("body too large") }

func TestDecodeSubscribeRequest(t *testing.T) {
	req, err := DecodeSubscribeRequest(strings.NewReader(`{"email":"user@example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Email != "user@example.com" {
		t.Errorf("email = %q", req.Email)
	}

	if _, err := DecodeSubscribeRequest(failingReader{}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail for read failure, got %v", err)
	}
}
