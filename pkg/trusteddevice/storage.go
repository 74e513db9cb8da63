package trusteddevice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence gateway for trust grants. Implementations must
// keep (UserID, Fingerprint) unique: Replace swaps any existing row for the
// pair instead of accumulating duplicate trust windows.
type Storage interface {
	// Find returns the grant for the pair or ErrNotFound. Expired rows are
	// still returned; expiry is the registry's decision.
	Find(ctx context.Context, userID uuid.UUID, fp string) (*Device, error)

	// Replace removes any existing grant for (device.UserID,
	// device.Fingerprint) and inserts device in its place.
	Replace(ctx context.Context, device *Device) error

	// Touch updates LastSeenAt for the pair.
	Touch(ctx context.Context, userID uuid.UUID, fp string, at time.Time) error

	// Delete removes the grant for the pair. Missing rows are not an error.
	Delete(ctx context.Context, userID uuid.UUID, fp string) error

	// DeleteByUser removes all grants for the user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// ListByUser returns all grants for the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Device, error)

	// DeleteExpired removes grants with TrustedUntil before the cutoff and
	// returns how many rows were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
