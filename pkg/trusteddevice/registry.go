package trusteddevice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// MinTrustDays and MaxTrustDays bound the trust window; requested
	// durations are clamped into this range.
	MinTrustDays = 1
	MaxTrustDays = 90

	// DefaultTrustDays is used when the host does not configure a window.
	DefaultTrustDays = 30

	maxStoredUserAgent = 500
)

// Registry manages time-boxed device trust grants. It is a convenience
// layer: a valid grant lets the login flow skip the second factor for a
// recognised browser. The fingerprint it keys on is client-supplied and
// spoofable, so the registry must never be the only thing standing between
// an attacker and an account.
type Registry struct {
	storage Storage
}

// NewRegistry creates a registry backed by the given storage.
func NewRegistry(storage Storage) *Registry {
	return &Registry{storage: storage}
}

// IsTrusted reports whether a valid grant exists for the pair. A hit
// refreshes the grant's LastSeenAt as a side effect but never extends
// TrustedUntil; only an explicit Trust call does that.
func (r *Registry) IsTrusted(ctx context.Context, userID uuid.UUID, fp string, now time.Time) (bool, error) {
	device, err := r.storage.Find(ctx, userID, fp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if device.Expired(now) {
		return false, nil
	}
	if err := r.storage.Touch(ctx, userID, fp, now); err != nil {
		return true, err
	}
	return true, nil
}

// Trust grants (or re-grants) trust for the pair for the given number of
// days, clamped to [MinTrustDays, MaxTrustDays]. An existing grant is
// replaced rather than stacked, so repeated logins from the same browser
// keep exactly one row per device.
func (r *Registry) Trust(ctx context.Context, userID uuid.UUID, fp string, days int, meta Metadata) (*Device, error) {
	if fp == "" {
		return nil, ErrMissingFingerprint
	}
	if days < MinTrustDays {
		days = MinTrustDays
	}
	if days > MaxTrustDays {
		days = MaxTrustDays
	}

	userAgent := meta.UserAgent
	if len(userAgent) > maxStoredUserAgent {
		userAgent = userAgent[:maxStoredUserAgent]
	}

	now := time.Now()
	device := &Device{
		UserID:       userID,
		Fingerprint:  fp,
		Label:        DetectLabel(meta.UserAgent),
		UserAgent:    userAgent,
		IPAddress:    meta.IPAddress,
		TrustedUntil: now.AddDate(0, 0, days),
		CreatedAt:    now,
	}

	if err := r.storage.Replace(ctx, device); err != nil {
		return nil, errors.Join(ErrFailedToTrust, err)
	}
	return device, nil
}

// Revoke removes the grant for a single device.
func (r *Registry) Revoke(ctx context.Context, userID uuid.UUID, fp string) error {
	return r.storage.Delete(ctx, userID, fp)
}

// RevokeAll removes every grant for the user, e.g. when 2FA is disabled or
// the account is considered compromised.
func (r *Registry) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return r.storage.DeleteByUser(ctx, userID)
}

// List returns the user's grants, newest first, for device-management UIs.
func (r *Registry) List(ctx context.Context, userID uuid.UUID) ([]Device, error) {
	return r.storage.ListByUser(ctx, userID)
}

// PurgeExpired removes lapsed grants and returns how many were removed.
// Intended to be run periodically by the host.
func (r *Registry) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return r.storage.DeleteExpired(ctx, now)
}
