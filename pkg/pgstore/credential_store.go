package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mfakit/pkg/credential"
)

// CredentialStore is the PostgreSQL implementation of credential.Store. The
// counter primitives run as single conditional UPDATE statements so that
// concurrent verification attempts for the same user never race on
// read-then-write sequences.
type CredentialStore struct {
	pool *pgxpool.Pool
}

// NewCredentialStore creates a store backed by the given pool.
func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

func (s *CredentialStore) Get(ctx context.Context, userID uuid.UUID) (*credential.Credential, error) {
	const query = `
		SELECT user_id, encrypted_secret, enabled, last_used_code,
		       last_used_at, failed_attempts, last_failed_at, created_at, updated_at
		FROM totp_credentials
		WHERE user_id = $1`

	var (
		cred         credential.Credential
		lastUsedAt   *time.Time
		lastFailedAt *time.Time
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&cred.UserID, &cred.EncryptedSecret, &cred.Enabled, &cred.LastUsedCode,
		&lastUsedAt, &cred.FailedAttempts, &lastFailedAt, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, credential.ErrNotFound
		}
		return nil, err
	}

	cred.LastUsedAt = timeValue(lastUsedAt)
	cred.LastFailedAt = timeValue(lastFailedAt)
	return &cred, nil
}

func (s *CredentialStore) Save(ctx context.Context, cred *credential.Credential) error {
	const query = `
		INSERT INTO totp_credentials (
			user_id, encrypted_secret, enabled, last_used_code,
			last_used_at, failed_attempts, last_failed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_secret = EXCLUDED.encrypted_secret,
			enabled = EXCLUDED.enabled,
			last_used_code = EXCLUDED.last_used_code,
			last_used_at = EXCLUDED.last_used_at,
			failed_attempts = EXCLUDED.failed_attempts,
			last_failed_at = EXCLUDED.last_failed_at,
			updated_at = EXCLUDED.updated_at`

	createdAt, updatedAt := saveTimestamps(cred, time.Now())
	_, err := s.pool.Exec(ctx, query,
		cred.UserID, cred.EncryptedSecret, cred.Enabled, cred.LastUsedCode,
		nullTime(cred.LastUsedAt), cred.FailedAttempts, nullTime(cred.LastFailedAt),
		createdAt, updatedAt,
	)
	return err
}

// saveTimestamps returns the created/updated values Save persists. Callers
// routinely hand Save a fresh record with zero timestamps; inserting those
// literally would bypass the column defaults and store 0001-01-01, so the
// zero values are backfilled here, mirroring the in-memory store.
func saveTimestamps(cred *credential.Credential, now time.Time) (createdAt, updatedAt time.Time) {
	createdAt = cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return createdAt, now
}

func (s *CredentialStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM totp_credentials WHERE user_id = $1`, userID)
	return err
}

func (s *CredentialStore) RecordFailure(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	const query = `
		UPDATE totp_credentials
		SET failed_attempts = failed_attempts + 1,
		    last_failed_at = $2,
		    updated_at = $2
		WHERE user_id = $1
		RETURNING failed_attempts`

	var attempts int
	if err := s.pool.QueryRow(ctx, query, userID, at).Scan(&attempts); err != nil {
		if IsNotFoundError(err) {
			return 0, credential.ErrNotFound
		}
		return 0, err
	}
	return attempts, nil
}

func (s *CredentialStore) RecordSuccess(ctx context.Context, userID uuid.UUID, code string, at time.Time) error {
	// An empty code keeps the previous pin; the backup-code path resets the
	// counter without touching replay state.
	const query = `
		UPDATE totp_credentials
		SET failed_attempts = 0,
		    last_failed_at = NULL,
		    last_used_code = CASE WHEN $2::text = '' THEN last_used_code ELSE $2 END,
		    last_used_at = CASE WHEN $2::text = '' THEN last_used_at ELSE $3 END,
		    updated_at = $3
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, code, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return credential.ErrNotFound
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
