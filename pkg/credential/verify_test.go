package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

func newTestCipher(t *testing.T) *totp.Cipher {
	t.Helper()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	cipher, err := totp.NewCipher(key)
	require.NoError(t, err)
	return cipher
}

// seedCredential provisions an enabled credential and returns it together
// with the plaintext secret so tests can derive valid codes.
func seedCredential(t *testing.T, store *credential.MemoryStore, cipher *totp.Cipher) (*credential.Credential, string) {
	t.Helper()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	encrypted, err := cipher.EncryptSecret(secret)
	require.NoError(t, err)

	cred := &credential.Credential{
		UserID:          uuid.New(),
		EncryptedSecret: encrypted,
		Enabled:         true,
	}
	require.NoError(t, store.Save(context.Background(), cred))

	saved, err := store.Get(context.Background(), cred.UserID)
	require.NoError(t, err)
	return saved, secret
}

func TestVerifyTOTP(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	t.Run("valid code", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, secret := seedCredential(t, store, cipher)

		code, err := totp.CodeAt(secret, now, verifier.Params())
		require.NoError(t, err)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, code, now)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeValid, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, code, saved.LastUsedCode)
		assert.Equal(t, 0, saved.FailedAttempts)
	})

	t.Run("wrong code increments counter", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, _ := seedCredential(t, store, cipher)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, "000000", now)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeInvalid, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, 1, saved.FailedAttempts)
		assert.Equal(t, now, saved.LastFailedAt)
	})

	t.Run("replay within period is rejected", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, secret := seedCredential(t, store, cipher)

		code, err := totp.CodeAt(secret, now, verifier.Params())
		require.NoError(t, err)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, code, now)
		require.NoError(t, err)
		require.Equal(t, credential.OutcomeValid, outcome)

		// Same code five seconds later: still inside the period, counts as
		// a failed attempt.
		outcome, err = verifier.VerifyTOTP(context.Background(), cred, code, now.Add(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeCodeAlreadyUsed, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, 1, saved.FailedAttempts)
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, secret := seedCredential(t, store, cipher)

		for i := range verifier.Policy().MaxAttempts {
			outcome, err := verifier.VerifyTOTP(context.Background(), cred, "000000", now.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			require.Equal(t, credential.OutcomeInvalid, outcome)
		}

		// Even a correct code is refused while the lockout lasts, and the
		// attempt is not evaluated at all.
		at := now.Add(10 * time.Second)
		code, err := totp.CodeAt(secret, at, verifier.Params())
		require.NoError(t, err)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, code, at)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeRateLimited, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, verifier.Policy().MaxAttempts, saved.FailedAttempts)
	})

	t.Run("attempts allowed again after cooldown", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, secret := seedCredential(t, store, cipher)

		for range verifier.Policy().MaxAttempts {
			_, err := verifier.VerifyTOTP(context.Background(), cred, "000000", now)
			require.NoError(t, err)
		}

		at := now.Add(verifier.Policy().Cooldown + time.Second)
		code, err := totp.CodeAt(secret, at, verifier.Params())
		require.NoError(t, err)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, code, at)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeValid, outcome)
	})

	t.Run("malformed candidate is an ordinary failure", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, _ := seedCredential(t, store, cipher)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, "not-a-code", now)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeInvalid, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, 1, saved.FailedAttempts)
	})

	t.Run("undecryptable secret surfaces the error", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)

		cred := &credential.Credential{
			UserID:          uuid.New(),
			EncryptedSecret: "bm90LWEtcmVhbC1ibG9i",
			Enabled:         true,
		}
		require.NoError(t, store.Save(context.Background(), cred))

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, "123456", now)
		require.Error(t, err)
		assert.Equal(t, credential.OutcomeInvalid, outcome)
	})

	t.Run("nil credential", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		verifier := credential.NewVerifier(store, newTestCipher(t))

		outcome, err := verifier.VerifyTOTP(context.Background(), nil, "123456", now)
		require.ErrorIs(t, err, credential.ErrNotFound)
		assert.Equal(t, credential.OutcomeInvalid, outcome)
	})
}

type fakeConsumer struct {
	accept string
	err    error
}

func (f *fakeConsumer) Consume(ctx context.Context, userID uuid.UUID, candidate string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return candidate == f.accept, nil
}

func TestVerifyBackupCode(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	t.Run("valid code resets counter and keeps pin", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, _ := seedCredential(t, store, cipher)
		cred.LastUsedCode = "111111"
		cred.LastUsedAt = now.Add(-time.Minute)
		require.NoError(t, store.Save(context.Background(), cred))

		_, err := store.RecordFailure(context.Background(), cred.UserID, now.Add(-time.Second))
		require.NoError(t, err)

		outcome, err := verifier.VerifyBackupCode(context.Background(), cred, &fakeConsumer{accept: "1234-5678"}, "1234-5678", now)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeValid, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, 0, saved.FailedAttempts)
		assert.Equal(t, "111111", saved.LastUsedCode, "backup codes must not disturb TOTP replay state")
	})

	t.Run("unknown code increments shared counter", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, _ := seedCredential(t, store, cipher)

		outcome, err := verifier.VerifyBackupCode(context.Background(), cred, &fakeConsumer{accept: "1234-5678"}, "0000-0000", now)
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeInvalid, outcome)

		saved, err := store.Get(context.Background(), cred.UserID)
		require.NoError(t, err)
		assert.Equal(t, 1, saved.FailedAttempts)
	})

	t.Run("lockout applies to backup codes too", func(t *testing.T) {
		t.Parallel()

		store := credential.NewMemoryStore()
		cipher := newTestCipher(t)
		verifier := credential.NewVerifier(store, cipher)
		cred, _ := seedCredential(t, store, cipher)

		consumer := &fakeConsumer{accept: "1234-5678"}
		for range verifier.Policy().MaxAttempts {
			_, err := verifier.VerifyBackupCode(context.Background(), cred, consumer, "0000-0000", now)
			require.NoError(t, err)
		}

		outcome, err := verifier.VerifyBackupCode(context.Background(), cred, consumer, "1234-5678", now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeRateLimited, outcome)
	})
}

func TestLockoutPolicy(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	policy := credential.DefaultLockoutPolicy()

	t.Run("below threshold", func(t *testing.T) {
		t.Parallel()

		cred := &credential.Credential{FailedAttempts: 4, LastFailedAt: now}
		assert.False(t, policy.LockedOut(cred, now))
		assert.Zero(t, policy.RetryAfter(cred, now))
	})

	t.Run("at threshold within cooldown", func(t *testing.T) {
		t.Parallel()

		cred := &credential.Credential{FailedAttempts: 5, LastFailedAt: now}
		at := now.Add(30 * time.Second)
		assert.True(t, policy.LockedOut(cred, at))
		assert.Equal(t, 30*time.Second, policy.RetryAfter(cred, at))
	})

	t.Run("cooldown elapsed", func(t *testing.T) {
		t.Parallel()

		cred := &credential.Credential{FailedAttempts: 5, LastFailedAt: now}
		assert.False(t, policy.LockedOut(cred, now.Add(61*time.Second)))
	})

	t.Run("nil credential", func(t *testing.T) {
		t.Parallel()

		assert.False(t, policy.LockedOut(nil, now))
	})
}
