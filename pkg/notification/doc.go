// Package notification delivers second-factor lifecycle emails: activation,
// removal, and repeated failed attempts against an account.
//
// The package has two layers. Sender is the delivery transport: Postmark in
// production, DevSender writing HTML files to disk during development.
// EmailNotifier sits on top and implements login.Notifier, composing the
// per-event message and resolving the recipient through the host's
// RecipientResolver.
//
// # Usage
//
//	sender, err := notification.NewPostmarkSender(cfg)
//	if err != nil {
//		return err
//	}
//	notifier := notification.NewEmailNotifier(sender, users, "Acme")
//
//	flow := login.NewFlow(store, verifier, vault,
//		login.WithNotifier(notifier),
//	)
//
// Delivery is best effort from the login flow's point of view: the flow
// logs a failed send and continues, so an email outage never blocks an
// authentication attempt.
package notification
