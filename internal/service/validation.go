package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrInvalidEmail is returned for a missing, non-string or malformed email.
var ErrInvalidEmail = errors.New("invalid email")

// maxEmailLength is the RFC 5321 path limit.
const maxEmailLength = 254

// emailPattern accepts a local part of letters, digits and _'+-. ending in a
// letter, digit, _, + or -, then dot-separated host labels and a TLD of at
// least two letters. Leading dots and ".." are rejected separately.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// ValidateEmail checks the shape of an address. The value is not trimmed or
// case-folded.
func ValidateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	if strings.HasPrefix(email, ".") || strings.Contains(email, "..") {
		return ErrInvalidEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// SubscribeRequest is the validated body of POST /api/subscribe.
type SubscribeRequest struct {
	Email string
}

// ParseSubscribeRequest validates an arbitrary JSON body. Any JSON object is
// accepted as long as its "email" member is a well-formed address string;
// other members are ignored.
func ParseSubscribeRequest(body []byte) (SubscribeRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return SubscribeRequest{}, fmt.Errorf("%w: body is not a JSON object", ErrInvalidEmail)
	}

	raw, ok := fields["email"]
	if !ok {
		return SubscribeRequest{}, fmt.Errorf("%w: email is required", ErrInvalidEmail)
	}

	var email string
	if err := json.Unmarshal(raw, &email); err != nil || string(raw) == "null" {
		return SubscribeRequest{}, fmt.Errorf("%w: email must be a string", ErrInvalidEmail)
	}

	if err := ValidateEmail(email); err != nil {
		return SubscribeRequest{}, err
	}

	return SubscribeRequest{Email: email}, nil
}

// DecodeSubscribeRequest reads r to EOF and parses it. A read failure, such as
// a body over the size limit, is reported as invalid input.
func DecodeSubscribeRequest(r io.Reader) (SubscribeRequest, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return SubscribeRequest{}, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return ParseSubscribeRequest(body)
}
