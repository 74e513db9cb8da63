package pgstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mfakit/pkg/activity"
)

// ActivityStore is the PostgreSQL implementation of activity.Storage.
type ActivityStore struct {
	pool *pgxpool.Pool
}

// NewActivityStore creates a store backed by the given pool.
func NewActivityStore(pool *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

func (s *ActivityStore) Insert(ctx context.Context, entry *activity.Entry) error {
	const query = `
		INSERT INTO mfa_activity (id, user_id, action, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID, entry.UserID, string(entry.Action), entry.Details,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	return err
}

func (s *ActivityStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]activity.Entry, error) {
	const query = `
		SELECT id, user_id, action, details, ip_address, user_agent, created_at
		FROM mfa_activity
		WHERE $1::uuid = '00000000-0000-0000-0000-000000000000' OR user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.Details,
			&entry.IPAddress, &entry.UserAgent, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
