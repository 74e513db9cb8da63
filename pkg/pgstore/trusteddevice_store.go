package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mfakit/pkg/trusteddevice"
)

// TrustedDeviceStore is the PostgreSQL implementation of
// trusteddevice.Storage. Replace relies on the (user_id, fingerprint)
// primary key and an upsert, so repeated trust grants for the same browser
// swap the row instead of accumulating.
type TrustedDeviceStore struct {
	pool *pgxpool.Pool
}

// NewTrustedDeviceStore creates a store backed by the given pool.
func NewTrustedDeviceStore(pool *pgxpool.Pool) *TrustedDeviceStore {
	return &TrustedDeviceStore{pool: pool}
}

func (s *TrustedDeviceStore) Find(ctx context.Context, userID uuid.UUID, fp string) (*trusteddevice.Device, error) {
	const query = `
		SELECT user_id, fingerprint, label, user_agent, ip_address,
		       trusted_until, created_at, last_seen_at
		FROM trusted_devices
		WHERE user_id = $1 AND fingerprint = $2`

	var device trusteddevice.Device
	err := s.pool.QueryRow(ctx, query, userID, fp).Scan(
		&device.UserID, &device.Fingerprint, &device.Label, &device.UserAgent,
		&device.IPAddress, &device.TrustedUntil, &device.CreatedAt, &device.LastSeenAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, trusteddevice.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (s *TrustedDeviceStore) Replace(ctx context.Context, device *trusteddevice.Device) error {
	const query = `
		INSERT INTO trusted_devices (
			user_id, fingerprint, label, user_agent, ip_address,
			trusted_until, created_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, fingerprint) DO UPDATE SET
			label = EXCLUDED.label,
			user_agent = EXCLUDED.user_agent,
			ip_address = EXCLUDED.ip_address,
			trusted_until = EXCLUDED.trusted_until,
			created_at = EXCLUDED.created_at,
			last_seen_at = EXCLUDED.last_seen_at`

	_, err := s.pool.Exec(ctx, query,
		device.UserID, device.Fingerprint, device.Label, device.UserAgent,
		device.IPAddress, device.TrustedUntil, device.CreatedAt, device.LastSeenAt,
	)
	return err
}

func (s *TrustedDeviceStore) Touch(ctx context.Context, userID uuid.UUID, fp string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE trusted_devices SET last_seen_at = $3 WHERE user_id = $1 AND fingerprint = $2`,
		userID, fp, at,
	)
	return err
}

func (s *TrustedDeviceStore) Delete(ctx context.Context, userID uuid.UUID, fp string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM trusted_devices WHERE user_id = $1 AND fingerprint = $2`,
		userID, fp,
	)
	return err
}

func (s *TrustedDeviceStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM trusted_devices WHERE user_id = $1`, userID)
	return err
}

func (s *TrustedDeviceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]trusteddevice.Device, error) {
	const query = `
		SELECT user_id, fingerprint, label, user_agent, ip_address,
		       trusted_until, created_at, last_seen_at
		FROM trusted_devices
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []trusteddevice.Device
	for rows.Next() {
		var device trusteddevice.Device
		if err := rows.Scan(
			&device.UserID, &device.Fingerprint, &device.Label, &device.UserAgent,
			&device.IPAddress, &device.TrustedUntil, &device.CreatedAt, &device.LastSeenAt,
		); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (s *TrustedDeviceStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trusted_devices WHERE trusted_until < $1`, before)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
