// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// Subscriber is one email address on the launch waitlist.
// Records are created once and never updated.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// EmailDomain returns the part of the email after the last "@",
// or an empty string when there is none.
func (s *Subscriber) EmailDomain() string {
	return EmailDomain(s.Email)
}

// EmailDomain returns the domain part of an address. Used wherever an
// address must be logged or tracked without the mailbox name.
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return email[i+1:]
}
