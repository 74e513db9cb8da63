package notification

import "context"

// Sender delivers a single email. Postmark backs it in production; DevSender
// writes to disk for local development.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	SendTo   string // Email address of the recipient
	Subject  string
	BodyHTML string
	Tag      string // Optional delivery tag for analytics
}

// Validate checks the message has a recipient, subject and body.
func (m Message) Validate() error {
	if m.SendTo == "" || !emailRegex.MatchString(m.SendTo) {
		return ErrInvalidRecipient
	}
	if m.Subject == "" {
		return ErrEmptySubject
	}
	if m.BodyHTML == "" {
		return ErrEmptyBody
	}
	return nil
}
