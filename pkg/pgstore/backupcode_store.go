package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackupCodeStore is the PostgreSQL implementation of backupcode.Storage.
// Consume is a single conditional UPDATE, so two concurrent redemptions of
// the same code resolve to exactly one winner at the database level.
type BackupCodeStore struct {
	pool *pgxpool.Pool
}

// NewBackupCodeStore creates a store backed by the given pool.
func NewBackupCodeStore(pool *pgxpool.Pool) *BackupCodeStore {
	return &BackupCodeStore{pool: pool}
}

func (s *BackupCodeStore) ReplaceBatch(ctx context.Context, userID uuid.UUID, hashes []string, createdAt time.Time) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM backup_codes WHERE user_id = $1`, userID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, hash := range hashes {
			batch.Queue(
				`INSERT INTO backup_codes (id, user_id, code_hash, created_at) VALUES ($1, $2, $3, $4)`,
				uuid.New(), userID, hash, createdAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *BackupCodeStore) Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error) {
	const query = `
		UPDATE backup_codes
		SET used = TRUE, used_at = $3
		WHERE user_id = $1 AND code_hash = $2 AND used = FALSE`

	tag, err := s.pool.Exec(ctx, query, userID, hash, usedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *BackupCodeStore) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM backup_codes WHERE user_id = $1 AND used = FALSE`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *BackupCodeStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM backup_codes WHERE user_id = $1`, userID)
	return err
}
