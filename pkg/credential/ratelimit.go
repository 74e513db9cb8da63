package credential

import "time"

const (
	DefaultMaxAttempts = 5                // Consecutive failures before lockout
	DefaultCooldown    = 60 * time.Second // Lockout duration from the last failure
)

// LockoutPolicy is a stateless brute-force policy evaluated over the failure
// counters embedded in the credential record. Keeping the counters on the
// credential keeps the rate-limit state consistent with the record it
// protects; there is no separate limiter store. The same policy applies to
// TOTP and backup-code verification.
type LockoutPolicy struct {
	MaxAttempts int           // Consecutive failures before lockout
	Cooldown    time.Duration // How long the lockout lasts from the last failure
}

// DefaultLockoutPolicy locks out after 5 consecutive failures for 60 seconds.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Cooldown:    DefaultCooldown,
	}
}

// LockedOut reports whether the credential is currently in cooldown.
func (p LockoutPolicy) LockedOut(cred *Credential, now time.Time) bool {
	if cred == nil || cred.FailedAttempts < p.MaxAttempts {
		return false
	}
	if cred.LastFailedAt.IsZero() {
		return false
	}
	return now.Sub(cred.LastFailedAt) < p.Cooldown
}

// RetryAfter returns how long the caller must wait before the next attempt.
// Returns 0 when not locked out.
func (p LockoutPolicy) RetryAfter(cred *Credential, now time.Time) time.Duration {
	if !p.LockedOut(cred, now) {
		return 0
	}
	return p.Cooldown - now.Sub(cred.LastFailedAt)
}
