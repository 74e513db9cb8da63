package credential

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is a user's second-factor record. At most one credential exists
// per user; the store enforces uniqueness. Enabled=false means the secret
// exists (typically mid-setup) but is not enforced at login.
type Credential struct {
	UserID          uuid.UUID
	EncryptedSecret string // AES-256-GCM blob, never the plaintext secret
	Enabled         bool
	LastUsedCode    string    // last accepted TOTP code, pinned for replay protection
	LastUsedAt      time.Time // zero value means never used
	FailedAttempts  int
	LastFailedAt    time.Time // zero value means no recent failure
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store is the persistence gateway for credentials. Implementations must
// guarantee one row per user and execute the counter primitives atomically:
// a read-then-write sequence over FailedAttempts is a TOCTOU race under
// concurrent login attempts for the same user.
type Store interface {
	// Get returns the credential for the user or ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*Credential, error)

	// Save upserts the credential keyed by UserID.
	Save(ctx context.Context, cred *Credential) error

	// Delete removes the credential. Removing a missing credential is not
	// an error.
	Delete(ctx context.Context, userID uuid.UUID) error

	// RecordFailure atomically increments the failure counter and stamps
	// the failure time, returning the new counter value.
	RecordFailure(ctx context.Context, userID uuid.UUID, at time.Time) (int, error)

	// RecordSuccess atomically resets the failure counter and pins the
	// accepted code and its time for replay detection. An empty code leaves
	// the previous pin in place (used by the backup-code path).
	RecordSuccess(ctx context.Context, userID uuid.UUID, code string, at time.Time) error
}
