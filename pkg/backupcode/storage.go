package backupcode

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence gateway for backup codes. Consume must be
// atomic: the lookup of an unused row and setting its used flag happen as
// one operation (a conditional update, transaction or equivalent row lock),
// otherwise two concurrent redemptions of the same code is a double-spend.
type Storage interface {
	// ReplaceBatch atomically deletes the user's existing codes and inserts
	// the new hashes as one batch.
	ReplaceBatch(ctx context.Context, userID uuid.UUID, hashes []string, createdAt time.Time) error

	// Consume marks the matching unused row as used and returns whether a
	// row was consumed. No match or an already-used row returns false with
	// no state change.
	Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error)

	// CountUnused returns the number of unused codes for the user.
	CountUnused(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteByUser removes all codes for the user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
