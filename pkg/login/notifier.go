package login

import (
	"context"

	"github.com/google/uuid"
)

// EventKind identifies a notification-worthy second-factor event.
type EventKind int

const (
	// EventEnabled fires when 2FA is activated on an account.
	EventEnabled EventKind = iota
	// EventDisabled fires when 2FA is removed from an account.
	EventDisabled
	// EventRepeatedFailures fires when consecutive failed attempts reach the
	// lockout threshold.
	EventRepeatedFailures
)

// String returns the event name for logging.
func (k EventKind) String() string {
	switch k {
	case EventEnabled:
		return "enabled"
	case EventDisabled:
		return "disabled"
	case EventRepeatedFailures:
		return "repeated_failures"
	default:
		return "unknown"
	}
}

// Event is a notification payload. FailureCount is set only for
// EventRepeatedFailures.
type Event struct {
	Kind         EventKind
	FailureCount int
}

// Notifier is the consumed notification gateway (typically email). The flow
// calls it best effort: a delivery failure is logged, never surfaced to the
// user mid-login. pkg/notification provides an email implementation.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, userID uuid.UUID, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, userID uuid.UUID, event Event) error {
	return f(ctx, userID, event)
}
