package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/login"
)

// RecipientResolver maps a user ID to the email address notifications go
// to. Implemented by the host's user storage.
type RecipientResolver interface {
	EmailByUserID(ctx context.Context, userID uuid.UUID) (string, error)
}

// EmailNotifier implements login.Notifier by emailing the account owner
// about second-factor lifecycle events: activation, removal, and repeated
// failed attempts against their account.
type EmailNotifier struct {
	sender   Sender
	resolver RecipientResolver
	issuer   string // product name used in subjects and bodies
}

// NewEmailNotifier creates an email-backed notifier.
func NewEmailNotifier(sender Sender, resolver RecipientResolver, issuer string) *EmailNotifier {
	return &EmailNotifier{
		sender:   sender,
		resolver: resolver,
		issuer:   issuer,
	}
}

// Notify sends the email for the event.
func (n *EmailNotifier) Notify(ctx context.Context, userID uuid.UUID, event login.Event) error {
	sendTo, err := n.resolver.EmailByUserID(ctx, userID)
	if err != nil {
		return err
	}

	msg, err := n.compose(sendTo, event)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

func (n *EmailNotifier) compose(sendTo string, event login.Event) (Message, error) {
	switch event.Kind {
	case login.EventEnabled:
		return Message{
			SendTo:  sendTo,
			Subject: fmt.Sprintf("Two-factor authentication enabled on your %s account", n.issuer),
			Tag:     "2fa-enabled",
			BodyHTML: fmt.Sprintf(
				"<p>Two-factor authentication was just enabled on your %s account.</p>"+
					"<p>From now on, signing in requires a code from your authenticator app. "+
					"Keep your backup codes somewhere safe.</p>"+
					"<p>If this wasn't you, contact support immediately.</p>",
				n.issuer),
		}, nil
	case login.EventDisabled:
		return Message{
			SendTo:  sendTo,
			Subject: fmt.Sprintf("Two-factor authentication disabled on your %s account", n.issuer),
			Tag:     "2fa-disabled",
			BodyHTML: fmt.Sprintf(
				"<p>Two-factor authentication was just disabled on your %s account.</p>"+
					"<p>Your account is now protected by your password only.</p>"+
					"<p>If this wasn't you, reset your password and contact support immediately.</p>",
				n.issuer),
		}, nil
	case login.EventRepeatedFailures:
		return Message{
			SendTo:  sendTo,
			Subject: fmt.Sprintf("Failed sign-in attempts on your %s account", n.issuer),
			Tag:     "2fa-failed-attempts",
			BodyHTML: fmt.Sprintf(
				"<p>There have been %d consecutive failed two-factor attempts on your %s account. "+
					"Sign-in is temporarily locked.</p>"+
					"<p>If this wasn't you, someone may know your password. "+
					"We recommend changing it now.</p>",
				event.FailureCount, n.issuer),
		}, nil
	default:
		return Message{}, fmt.Errorf("%w: %d", ErrUnknownEvent, event.Kind)
	}
}
