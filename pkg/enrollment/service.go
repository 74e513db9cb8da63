package enrollment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/activity"
	"github.com/dmitrymomot/mfakit/pkg/backupcode"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/login"
	"github.com/dmitrymomot/mfakit/pkg/qrcode"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Setup is everything the host needs to render the enrollment screen. The
// plaintext secret and the QR code derived from it are returned exactly
// once; only the encrypted secret is persisted.
type Setup struct {
	Secret          string // Base32 secret for manual entry
	ProvisioningURI string // otpauth:// URI for authenticator apps
	QRCodeDataURL   string // the URI rendered as an inline PNG
}

// Status summarizes a user's second-factor configuration.
type Status struct {
	Configured           bool // a credential exists (possibly mid-setup)
	Enabled              bool // the second factor is enforced at login
	BackupCodesRemaining int
}

// DeviceRevoker is the subset of the trusted-device registry the service
// uses when tearing down 2FA.
type DeviceRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// Service manages the second-factor lifecycle: provisioning a secret,
// activating it with a first code, issuing backup codes and disabling the
// whole thing again.
type Service struct {
	store    credential.Store
	cipher   *totp.Cipher
	vault    *backupcode.Vault
	verifier *credential.Verifier
	issuer   string
	params   totp.Params
	codes    int
	qrSize   int
	devices  DeviceRevoker
	notifier login.Notifier
	recorder login.Recorder
	logger   *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service)

// WithParams overrides the TOTP derivation parameters.
func WithParams(params totp.Params) Option {
	return func(s *Service) {
		s.params = params.WithDefaults()
	}
}

// WithBackupCodeCount overrides how many backup codes a batch contains.
func WithBackupCodeCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.codes = count
		}
	}
}

// WithQRCodeSize overrides the rendered QR code size in pixels.
func WithQRCodeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.qrSize = size
		}
	}
}

// WithDeviceRevoker wires trusted-device teardown into Disable.
func WithDeviceRevoker(devices DeviceRevoker) Option {
	return func(s *Service) {
		s.devices = devices
	}
}

// WithNotifier configures the notification gateway.
func WithNotifier(notifier login.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithRecorder configures the activity recorder.
func WithRecorder(recorder login.Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an enrollment service. issuer is the name shown in
// authenticator apps next to the account.
func NewService(store credential.Store, cipher *totp.Cipher, vault *backupcode.Vault, issuer string, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cipher: cipher,
		vault:  vault,
		issuer: issuer,
		params: totp.Params{}.WithDefaults(),
		codes:  backupcode.DefaultCount,
		qrSize: qrcode.DefaultSize,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	// Activation codes run through the same verification workflow as login
	// codes, so failed activation attempts count against the credential's
	// lockout and the accepted code is pinned against replay.
	s.verifier = credential.NewVerifier(store, cipher, credential.WithParams(s.params))
	return s
}

// Setup provisions a fresh secret for the user and stores it encrypted with
// the credential disabled; nothing is enforced at login until Activate
// confirms the user's authenticator produces matching codes. Calling Setup
// again before activation replaces the pending secret. accountName is the
// user-facing identifier (typically the email) embedded in the URI.
func (s *Service) Setup(ctx context.Context, userID uuid.UUID, accountName string) (*Setup, error) {
	existing, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, credential.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Enabled {
		return nil, ErrAlreadyEnabled
	}

	return s.provision(ctx, userID, accountName)
}

// Activate turns enforcement on after the user proves their authenticator
// works by submitting a current code. It returns the freshly issued backup
// codes for one-time display.
//
// The code check is the full verification workflow: repeated wrong codes
// lock activation out like any other attempt, and the accepted code is
// pinned so it cannot be replayed at the first login.
func (s *Service) Activate(ctx context.Context, userID uuid.UUID, code string, meta activity.Meta) ([]string, error) {
	cred, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cred.Enabled {
		return nil, ErrAlreadyEnabled
	}

	outcome, err := s.verifier.VerifyTOTP(ctx, cred, code, time.Now())
	switch outcome {
	case credential.OutcomeValid:
	case credential.OutcomeRateLimited:
		return nil, ErrTooManyAttempts
	default:
		if err != nil {
			return nil, err
		}
		return nil, ErrActivationCodeMismatch
	}

	cred.Enabled = true
	if err := s.store.Save(ctx, cred); err != nil {
		return nil, err
	}

	codes, err := s.vault.Generate(ctx, userID, s.codes)
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, activity.ActionEnabled, "", meta)
	s.notify(ctx, userID, login.Event{Kind: login.EventEnabled})

	return codes, nil
}

// Disable removes the second factor entirely: the credential, all backup
// codes and any trusted-device grants are deleted together, and the user is
// notified that their account lost its second factor.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, meta activity.Meta) error {
	if _, err := s.store.Get(ctx, userID); err != nil {
		return err
	}

	if err := s.vault.Clear(ctx, userID); err != nil {
		return err
	}
	if s.devices != nil {
		if err := s.devices.RevokeAll(ctx, userID); err != nil {
			return err
		}
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}

	s.record(ctx, userID, activity.ActionDisabled, "", meta)
	s.notify(ctx, userID, login.Event{Kind: login.EventDisabled})
	return nil
}

// RegenerateBackupCodes replaces the user's batch with fresh codes, e.g.
// when the printed sheet is lost. Requires an enabled credential.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	cred, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cred.Enabled {
		return nil, ErrNotEnabled
	}
	return s.vault.Generate(ctx, userID, s.codes)
}

// RegenerateSecret provisions a new secret for an already-configured user.
// The credential drops back to disabled until the new secret is activated,
// so a user who lost their device cannot be locked out by a half-finished
// rotation.
func (s *Service) RegenerateSecret(ctx context.Context, userID uuid.UUID, accountName string, meta activity.Meta) (*Setup, error) {
	if _, err := s.store.Get(ctx, userID); err != nil {
		return nil, err
	}

	setup, err := s.provision(ctx, userID, accountName)
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, activity.ActionSecretRegenerated, "", meta)
	return setup, nil
}

// Status reports the user's current second-factor configuration.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	cred, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return &Status{}, nil
		}
		return nil, err
	}

	remaining, err := s.vault.Remaining(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Status{
		Configured:           true,
		Enabled:              cred.Enabled,
		BackupCodesRemaining: remaining,
	}, nil
}

func (s *Service) provision(ctx context.Context, userID uuid.UUID, accountName string) (*Setup, error) {
	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.EncryptSecret(secret)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, &credential.Credential{
		UserID:          userID,
		EncryptedSecret: encrypted,
		Enabled:         false,
	}); err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.issuer,
		Algorithm:   s.params.Algorithm,
		Digits:      s.params.Digits,
		Period:      s.params.Period,
	})
	if err != nil {
		return nil, err
	}

	dataURL, err := qrcode.ProvisioningDataURL(uri, s.qrSize)
	if err != nil {
		return nil, err
	}

	return &Setup{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCodeDataURL:   dataURL,
	}, nil
}

func (s *Service) record(ctx context.Context, userID uuid.UUID, action activity.Action, details string, meta activity.Meta) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, userID, action, details, meta)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, event login.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, event); err != nil {
		s.logger.ErrorContext(ctx, "notification failed",
			"user_id", userID, "event", event.Kind.String(), "error", err)
	}
}
