// Package mailer sends the welcome message to new waitlist subscribers.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// ErrUnknownTLSPolicy is returned for an unsupported SMTP_TLS_POLICY value.
var ErrUnknownTLSPolicy = errors.New("unknown TLS policy")

const welcomeSubject = "You're on the Party Games waitlist!"

const welcomeText = `Thanks for joining the Party Games waitlist!

We'll let you know as soon as the games are ready to play.

The Party Games team
`

const welcomeHTML = `<html>
<body>
  <h1>You're on the list!</h1>
  <p>Thanks for joining the Party Games waitlist.</p>
  <p>We'll let you know as soon as the games are ready to play.</p>
</body>
</html>
`

// Config holds the SMTP settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string // "mandatory", "opportunistic" or "none"
	Timeout   time.Duration
}

// Sender delivers welcome mail over SMTP.
type Sender struct {
	cfg    Config
	policy mail.TLSPolicy
}

// ParseTLSPolicy maps a config value to a go-mail TLS policy.
func ParseTLSPolicy(s string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("%w: %q", ErrUnknownTLSPolicy, s)
	}
}

// New validates cfg and returns a Sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required")
	}
	policy, err := ParseTLSPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Sender{cfg: cfg, policy: policy}, nil
}

// SendWelcome sends the welcome message to one address.
func (s *Sender) SendWelcome(ctx context.Context, to string) error {
	msg, err := s.welcomeMessage(to)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send welcome mail: %w", err)
	}
	return nil
}

func (s *Sender) welcomeMessage(to string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("failed to set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	msg.Subject(welcomeSubject)
	msg.SetBodyString(mail.TypeTextPlain, welcomeText)
	msg.AddAlternativeString(mail.TypeTextHTML, welcomeHTML)
	return msg, nil
}

func (s *Sender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(s.policy),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}
