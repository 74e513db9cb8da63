package enrollment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/activity"
	"github.com/dmitrymomot/mfakit/pkg/backupcode"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/enrollment"
	"github.com/dmitrymomot/mfakit/pkg/login"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, event login.Event) error {
	args := m.Called(ctx, userID, event)
	return args.Error(0)
}

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type testEnv struct {
	service *enrollment.Service
	store   *credential.MemoryStore
	vault   *backupcode.Vault
	cipher  *totp.Cipher
	userID  uuid.UUID
}

func newTestEnv(t *testing.T, opts ...enrollment.Option) *testEnv {
	t.Helper()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	cipher, err := totp.NewCipher(key)
	require.NoError(t, err)

	store := credential.NewMemoryStore()
	vault := backupcode.NewVault(backupcode.NewMemoryStorage())

	return &testEnv{
		service: enrollment.NewService(store, cipher, vault, "Acme", opts...),
		store:   store,
		vault:   vault,
		cipher:  cipher,
		userID:  uuid.New(),
	}
}

// activate walks a user through Setup and Activate with a real code and
// returns the issued backup codes.
func (e *testEnv) activate(t *testing.T) []string {
	t.Helper()

	setup, err := e.service.Setup(context.Background(), e.userID, "user@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, totp.Params{})
	require.NoError(t, err)

	codes, err := e.service.Activate(context.Background(), e.userID, code, activity.Meta{})
	require.NoError(t, err)
	return codes
}

func TestSetup(t *testing.T) {
	t.Parallel()

	t.Run("provisions a disabled credential", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		setup, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, setup.Secret)
		assert.True(t, strings.HasPrefix(setup.ProvisioningURI, "otpauth://totp/Acme:user%40example.com?"))
		assert.True(t, strings.HasPrefix(setup.QRCodeDataURL, "data:image/png;base64,"))

		cred, err := env.store.Get(context.Background(), env.userID)
		require.NoError(t, err)
		assert.False(t, cred.Enabled, "nothing is enforced until activation")
		assert.NotEqual(t, setup.Secret, cred.EncryptedSecret)

		// Only the encrypted form is stored.
		secret, err := env.cipher.DecryptSecret(cred.EncryptedSecret)
		require.NoError(t, err)
		assert.Equal(t, setup.Secret, secret)
	})

	t.Run("repeated setup replaces the pending secret", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		first, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)
		second, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)
	})

	t.Run("refused while enabled", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.activate(t)

		_, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		assert.ErrorIs(t, err, enrollment.ErrAlreadyEnabled)
	})
}

func TestActivate(t *testing.T) {
	t.Parallel()

	t.Run("correct code enables and issues backup codes", func(t *testing.T) {
		t.Parallel()

		notifier := new(mockNotifier)
		env := newTestEnv(t, enrollment.WithNotifier(notifier))
		notifier.On("Notify", mock.Anything, env.userID, login.Event{Kind: login.EventEnabled}).Return(nil).Once()

		codes := env.activate(t)
		assert.Len(t, codes, backupcode.DefaultCount)

		cred, err := env.store.Get(context.Background(), env.userID)
		require.NoError(t, err)
		assert.True(t, cred.Enabled)
		notifier.AssertExpectations(t)
	})

	t.Run("wrong code leaves the credential disabled", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)

		_, err = env.service.Activate(context.Background(), env.userID, "000000", activity.Meta{})
		assert.ErrorIs(t, err, enrollment.ErrActivationCodeMismatch)

		cred, err := env.store.Get(context.Background(), env.userID)
		require.NoError(t, err)
		assert.False(t, cred.Enabled)

		remaining, err := env.vault.Remaining(context.Background(), env.userID)
		require.NoError(t, err)
		assert.Zero(t, remaining, "no backup codes before activation")
	})

	t.Run("without setup", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		_, err := env.service.Activate(context.Background(), env.userID, "123456", activity.Meta{})
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.activate(t)

		_, err := env.service.Activate(context.Background(), env.userID, "123456", activity.Meta{})
		assert.ErrorIs(t, err, enrollment.ErrAlreadyEnabled)
	})

	t.Run("activation code cannot be replayed at login", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		setup, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)

		code, err := totp.GenerateCode(setup.Secret, totp.Params{})
		require.NoError(t, err)
		_, err = env.service.Activate(context.Background(), env.userID, code, activity.Meta{})
		require.NoError(t, err)

		// The exact code that activated the credential is pinned; the first
		// login cannot reuse it within its window.
		verifier := credential.NewVerifier(env.store, env.cipher)
		cred, err := env.store.Get(context.Background(), env.userID)
		require.NoError(t, err)

		outcome, err := verifier.VerifyTOTP(context.Background(), cred, code, time.Now())
		require.NoError(t, err)
		assert.Equal(t, credential.OutcomeCodeAlreadyUsed, outcome)
	})

	t.Run("repeated wrong codes lock activation out", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		setup, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)

		for range credential.DefaultMaxAttempts {
			_, err := env.service.Activate(context.Background(), env.userID, "000000", activity.Meta{})
			require.ErrorIs(t, err, enrollment.ErrActivationCodeMismatch)
		}

		// Even the correct code is refused while the lockout lasts.
		code, err := totp.GenerateCode(setup.Secret, totp.Params{})
		require.NoError(t, err)
		_, err = env.service.Activate(context.Background(), env.userID, code, activity.Meta{})
		assert.ErrorIs(t, err, enrollment.ErrTooManyAttempts)
	})
}

func TestDisable(t *testing.T) {
	t.Parallel()

	t.Run("tears everything down", func(t *testing.T) {
		t.Parallel()

		notifier := new(mockNotifier)
		revoker := new(mockRevoker)
		env := newTestEnv(t, enrollment.WithNotifier(notifier), enrollment.WithDeviceRevoker(revoker))
		notifier.On("Notify", mock.Anything, env.userID, mock.Anything).Return(nil)
		revoker.On("RevokeAll", mock.Anything, env.userID).Return(nil).Once()

		env.activate(t)
		require.NoError(t, env.service.Disable(context.Background(), env.userID, activity.Meta{}))

		_, err := env.store.Get(context.Background(), env.userID)
		assert.ErrorIs(t, err, credential.ErrNotFound)

		remaining, err := env.vault.Remaining(context.Background(), env.userID)
		require.NoError(t, err)
		assert.Zero(t, remaining)
		revoker.AssertExpectations(t)
	})

	t.Run("without credential", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		assert.ErrorIs(t, env.service.Disable(context.Background(), env.userID, activity.Meta{}), credential.ErrNotFound)
	})
}

func TestRegenerateBackupCodes(t *testing.T) {
	t.Parallel()

	t.Run("replaces the batch", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, enrollment.WithBackupCodeCount(5))
		originals := env.activate(t)

		replacements, err := env.service.RegenerateBackupCodes(context.Background(), env.userID)
		require.NoError(t, err)
		assert.Len(t, replacements, 5)

		// Old codes are dead after regeneration.
		ok, err := env.vault.Consume(context.Background(), env.userID, originals[0])
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("requires an enabled credential", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)

		_, err = env.service.RegenerateBackupCodes(context.Background(), env.userID)
		assert.ErrorIs(t, err, enrollment.ErrNotEnabled)
	})
}

func TestRegenerateSecret(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.activate(t)

	setup, err := env.service.RegenerateSecret(context.Background(), env.userID, "user@example.com", activity.Meta{})
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)

	// Enforcement drops until the replacement secret is activated.
	cred, err := env.store.Get(context.Background(), env.userID)
	require.NoError(t, err)
	assert.False(t, cred.Enabled)

	code, err := totp.GenerateCode(setup.Secret, totp.Params{})
	require.NoError(t, err)
	_, err = env.service.Activate(context.Background(), env.userID, code, activity.Meta{})
	require.NoError(t, err)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		status, err := env.service.Status(context.Background(), env.userID)
		require.NoError(t, err)
		assert.False(t, status.Configured)
		assert.False(t, status.Enabled)
		assert.Zero(t, status.BackupCodesRemaining)
	})

	t.Run("mid-setup", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
		require.NoError(t, err)

		status, err := env.service.Status(context.Background(), env.userID)
		require.NoError(t, err)
		assert.True(t, status.Configured)
		assert.False(t, status.Enabled)
	})

	t.Run("enabled after some spending", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		codes := env.activate(t)

		ok, err := env.vault.Consume(context.Background(), env.userID, codes[0])
		require.NoError(t, err)
		require.True(t, ok)

		status, err := env.service.Status(context.Background(), env.userID)
		require.NoError(t, err)
		assert.True(t, status.Enabled)
		assert.Equal(t, backupcode.DefaultCount-1, status.BackupCodesRemaining)
	})
}

// Guards against a regression where activation accepted codes derived at a
// stale time: the activation check uses the current clock, so a code for
// a timestep far in the past must be rejected.
func TestActivateRejectsStaleCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	setup, err := env.service.Setup(context.Background(), env.userID, "user@example.com")
	require.NoError(t, err)

	stale, err := totp.CodeAt(setup.Secret, time.Now().Add(-time.Hour), totp.Params{})
	require.NoError(t, err)

	_, err = env.service.Activate(context.Background(), env.userID, stale, activity.Meta{})
	assert.ErrorIs(t, err, enrollment.ErrActivationCodeMismatch)
}
