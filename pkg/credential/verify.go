package credential

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Outcome is the result of a single verification attempt. Callers surface it
// as a reason code plus a generic message; deliberately nothing in the
// outcome distinguishes a failed backup code from a failed TOTP code.
type Outcome int

const (
	OutcomeInvalid Outcome = iota // code did not match any accepted window
	OutcomeValid
	OutcomeRateLimited     // lockout active, attempt not evaluated
	OutcomeCodeAlreadyUsed // replay of an accepted code within its window
)

// String returns the reason code for logging and messaging.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeCodeAlreadyUsed:
		return "code_already_used"
	default:
		return "invalid"
	}
}

// BackupConsumer redeems a one-time backup code. Satisfied by
// backupcode.Vault.
type BackupConsumer interface {
	Consume(ctx context.Context, userID uuid.UUID, candidate string) (bool, error)
}

// Verifier runs the verification workflow over a credential: rate limiting,
// replay protection, secret decryption and code comparison, persisting
// counter updates through the store's atomic primitives.
type Verifier struct {
	store  Store
	cipher *totp.Cipher
	params totp.Params
	policy LockoutPolicy
	logger *slog.Logger
}

// VerifierOption configures a Verifier during construction.
type VerifierOption func(*Verifier)

// WithParams overrides the TOTP derivation parameters.
func WithParams(params totp.Params) VerifierOption {
	return func(v *Verifier) {
		v.params = params.WithDefaults()
	}
}

// WithLockoutPolicy overrides the brute-force lockout policy.
func WithLockoutPolicy(policy LockoutPolicy) VerifierOption {
	return func(v *Verifier) {
		v.policy = policy
	}
}

// WithLogger configures the logger for operational failures.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a verification workflow bound to a credential store
// and the cipher protecting secrets at rest.
func NewVerifier(store Store, cipher *totp.Cipher, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		store:  store,
		cipher: cipher,
		params: totp.Params{}.WithDefaults(),
		policy: DefaultLockoutPolicy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Policy returns the active lockout policy.
func (v *Verifier) Policy() LockoutPolicy {
	return v.policy
}

// Params returns the active TOTP parameters.
func (v *Verifier) Params() totp.Params {
	return v.params
}

// VerifyTOTP validates a submitted TOTP code against the credential.
//
// The order of checks matters: the lockout fast path runs before any
// decryption or HMAC work so locked-out attempts stay cheap, and the replay
// check runs before derivation because a pinned code is a failure regardless
// of whether it would still match a window.
//
// The returned error is non-nil only for operational failures (store errors,
// undecryptable secret); those still yield OutcomeInvalid so the caller can
// show a generic message while the error reaches operators.
func (v *Verifier) VerifyTOTP(ctx context.Context, cred *Credential, candidate string, now time.Time) (Outcome, error) {
	if cred == nil {
		return OutcomeInvalid, ErrNotFound
	}

	if v.policy.LockedOut(cred, now) {
		return OutcomeRateLimited, nil
	}

	// A TOTP code stays valid for the whole drift window; without pinning the
	// last accepted code an attacker who captured it in transit could replay
	// it before expiry.
	if cred.LastUsedCode != "" && cred.LastUsedCode == candidate &&
		now.Sub(cred.LastUsedAt) < time.Duration(v.params.Period)*time.Second {
		if _, err := v.recordFailure(ctx, cred, now); err != nil {
			return OutcomeCodeAlreadyUsed, err
		}
		return OutcomeCodeAlreadyUsed, nil
	}

	secret, err := v.cipher.DecryptSecret(cred.EncryptedSecret)
	if err != nil {
		// Corrupted or tampered blob is an operational problem, not a user
		// mistake; it must reach operators.
		v.logger.ErrorContext(ctx, "failed to decrypt TOTP secret",
			"user_id", cred.UserID, "error", err)
		return OutcomeInvalid, err
	}

	ok, err := totp.Verify(secret, candidate, now, v.params)
	if err != nil && !errors.Is(err, totp.ErrInvalidCode) {
		// Malformed candidates are ordinary failed attempts; anything else
		// (bad stored secret, unsupported algorithm) is operational.
		v.logger.ErrorContext(ctx, "TOTP verification failed",
			"user_id", cred.UserID, "error", err)
		return OutcomeInvalid, err
	}

	if !ok {
		if _, err := v.recordFailure(ctx, cred, now); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeInvalid, nil
	}

	if err := v.store.RecordSuccess(ctx, cred.UserID, candidate, now); err != nil {
		return OutcomeValid, err
	}
	cred.FailedAttempts = 0
	cred.LastUsedCode = candidate
	cred.LastUsedAt = now
	return OutcomeValid, nil
}

// VerifyBackupCode redeems a one-time backup code through the vault while
// sharing the credential's lockout counters, so backup codes cannot be brute
// forced around the TOTP limiter.
func (v *Verifier) VerifyBackupCode(ctx context.Context, cred *Credential, vault BackupConsumer, candidate string, now time.Time) (Outcome, error) {
	if cred == nil {
		return OutcomeInvalid, ErrNotFound
	}

	if v.policy.LockedOut(cred, now) {
		return OutcomeRateLimited, nil
	}

	consumed, err := vault.Consume(ctx, cred.UserID, candidate)
	if err != nil {
		return OutcomeInvalid, err
	}

	if !consumed {
		if _, err := v.recordFailure(ctx, cred, now); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeInvalid, nil
	}

	// Reset the failure counter; the pinned TOTP code is left untouched
	// because backup codes are single-use at the storage layer.
	if err := v.store.RecordSuccess(ctx, cred.UserID, "", now); err != nil {
		return OutcomeValid, err
	}
	cred.FailedAttempts = 0
	return OutcomeValid, nil
}

func (v *Verifier) recordFailure(ctx context.Context, cred *Credential, now time.Time) (int, error) {
	count, err := v.store.RecordFailure(ctx, cred.UserID, now)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to record failed attempt",
			"user_id", cred.UserID, "error", err)
		return 0, err
	}
	cred.FailedAttempts = count
	cred.LastFailedAt = now
	return count, nil
}
