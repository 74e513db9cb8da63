package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/activity"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/trusteddevice"
)

// Mode selects which verification path a submitted code takes. The caller
// supplies it explicitly (e.g. from a "use a backup code" toggle) rather
// than the flow guessing from the code shape.
type Mode int

const (
	ModeTOTP Mode = iota
	ModeBackupCode
)

// Request carries the per-request client signals the flow needs.
type Request struct {
	Fingerprint string // device fingerprint, see pkg/fingerprint
	UserAgent   string
	IPAddress   string
	ReturnURL   string // page to return to after the handshake
}

// Result reports where the handshake stands after a flow call.
type Result struct {
	State      State
	Outcome    credential.Outcome // meaningful after a code submission
	RetryAfter time.Duration      // non-zero when rate limited
}

// DeviceRegistry is the subset of the trusted-device registry the flow uses.
type DeviceRegistry interface {
	IsTrusted(ctx context.Context, userID uuid.UUID, fp string, now time.Time) (bool, error)
	Trust(ctx context.Context, userID uuid.UUID, fp string, days int, meta trusteddevice.Metadata) (*trusteddevice.Device, error)
}

// Recorder is the subset of the activity recorder the flow uses.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, action activity.Action, details string, meta activity.Meta)
}

// Flow sequences the multi-step login handshake: password verified by the
// host, then the second factor here. The host invokes the explicit methods
// below at its lifecycle points; there is no discovery by convention.
type Flow struct {
	creds    credential.Store
	verifier *credential.Verifier
	vault    credential.BackupConsumer
	devices  DeviceRegistry
	notifier Notifier
	recorder Recorder
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// FlowOption configures a Flow during construction.
type FlowOption func(*Flow)

// WithDeviceRegistry enables the trusted-device bypass.
func WithDeviceRegistry(devices DeviceRegistry) FlowOption {
	return func(f *Flow) {
		f.devices = devices
	}
}

// WithNotifier configures the notification gateway.
func WithNotifier(notifier Notifier) FlowOption {
	return func(f *Flow) {
		f.notifier = notifier
	}
}

// WithRecorder configures the activity recorder.
func WithRecorder(recorder Recorder) FlowOption {
	return func(f *Flow) {
		f.recorder = recorder
	}
}

// WithConfig overrides the flow configuration.
func WithConfig(cfg Config) FlowOption {
	return func(f *Flow) {
		f.cfg = cfg
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) {
		f.now = now
	}
}

// NewFlow creates a login flow. The credential store, verifier and backup
// vault are required; the device registry, notifier and recorder are
// optional collaborators.
func NewFlow(creds credential.Store, verifier *credential.Verifier, vault credential.BackupConsumer, opts ...FlowOption) *Flow {
	f := &Flow{
		creds:    creds,
		verifier: verifier,
		vault:    vault,
		cfg:      Config{TrustedDeviceDays: trusteddevice.DefaultTrustDays},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnFirstFactorVerified is invoked by the host once the password check
// succeeded. It decides whether a second factor is owed and returns the
// updated session:
//
//   - no credential, or credential not enabled → authenticated
//   - enabled and the device holds a valid trust grant → authenticated,
//     without re-issuing the grant
//   - enabled otherwise → second factor required
func (f *Flow) OnFirstFactorVerified(ctx context.Context, sess Session, userID uuid.UUID, req Request) (Session, Result, error) {
	if req.ReturnURL != "" {
		sess.ReturnURL = req.ReturnURL
	}

	cred, err := f.creds.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			// Second factor not configured for this user.
			return sess.authenticated(userID), Result{State: StateAuthenticated}, nil
		}
		return sess, Result{State: sess.State()}, err
	}

	if !cred.Enabled {
		return sess.authenticated(userID), Result{State: StateAuthenticated}, nil
	}

	if f.deviceTrustActive() && req.Fingerprint != "" {
		trusted, err := f.devices.IsTrusted(ctx, userID, req.Fingerprint, f.now())
		if err != nil {
			// Fail towards asking for the code rather than letting a broken
			// registry bypass the second factor.
			f.logger.ErrorContext(ctx, "trusted device lookup failed",
				"user_id", userID, "error", err)
		} else if trusted {
			// The existing grant was merely refreshed; no new grant here.
			return sess.authenticated(userID), Result{State: StateAuthenticated}, nil
		}
	}

	return sess.pending(userID), Result{State: StateSecondFactorRequired}, nil
}

// OnCodeSubmitted is invoked by the host with the code the user typed in.
// Mode selects the TOTP or backup-code path; both share the same lockout
// counters. On success the session is promoted to authenticated and, when
// the feature is enabled, the device is granted trust. On failure the
// session stays in StateSecondFactorRequired and the outcome tells the
// caller which generic message to show.
func (f *Flow) OnCodeSubmitted(ctx context.Context, sess Session, code string, mode Mode, req Request) (Session, Result, error) {
	if sess.State() != StateSecondFactorRequired {
		return sess, Result{State: sess.State()}, ErrNoPendingLogin
	}
	userID := sess.PendingUserID

	cred, err := f.creds.Get(ctx, userID)
	if err != nil {
		// The credential disappeared mid-handshake (e.g. 2FA disabled by an
		// admin): restart the login rather than guessing.
		return sess.cleared(), Result{State: StatePasswordPending}, err
	}

	now := f.now()
	var outcome credential.Outcome
	switch mode {
	case ModeBackupCode:
		outcome, err = f.verifier.VerifyBackupCode(ctx, cred, f.vault, code, now)
	default:
		outcome, err = f.verifier.VerifyTOTP(ctx, cred, code, now)
	}
	if err != nil {
		f.logger.ErrorContext(ctx, "code verification error",
			"user_id", userID, "outcome", outcome.String(), "error", err)
	}

	meta := activity.Meta{IPAddress: req.IPAddress, UserAgent: req.UserAgent}

	if outcome != credential.OutcomeValid {
		f.record(ctx, userID, activity.ActionLoginFailed, outcome.String(), meta)
		// Rate-limited attempts are not evaluated and do not move the
		// counter, so the threshold comparison below fires exactly once,
		// on the failure that crossed it.
		if outcome != credential.OutcomeRateLimited &&
			cred.FailedAttempts == f.verifier.Policy().MaxAttempts {
			// Threshold just crossed; tell the account owner someone is
			// hammering their second factor.
			f.notify(ctx, userID, Event{Kind: EventRepeatedFailures, FailureCount: cred.FailedAttempts})
		}
		return sess, Result{
			State:      StateSecondFactorRequired,
			Outcome:    outcome,
			RetryAfter: f.verifier.Policy().RetryAfter(cred, now),
		}, err
	}

	if mode == ModeBackupCode {
		f.record(ctx, userID, activity.ActionBackupCodeUsed, "", meta)
	}
	f.record(ctx, userID, activity.ActionLoginSuccess, "", meta)

	if f.deviceTrustActive() && req.Fingerprint != "" {
		if _, err := f.devices.Trust(ctx, userID, req.Fingerprint, f.cfg.TrustedDeviceDays, trusteddevice.Metadata{
			UserAgent: req.UserAgent,
			IPAddress: req.IPAddress,
		}); err != nil {
			// Trust is a convenience; its failure must not fail the login.
			f.logger.ErrorContext(ctx, "failed to trust device",
				"user_id", userID, "error", err)
		} else {
			f.record(ctx, userID, activity.ActionDeviceTrusted, trusteddevice.DetectLabel(req.UserAgent), meta)
		}
	}

	return sess.authenticated(userID), Result{State: StateAuthenticated, Outcome: outcome}, nil
}

// Cancel abandons a pending handshake, returning the session to the initial
// state. Used for explicit "back to login" actions; session expiry is owned
// by the host's session layer.
func (f *Flow) Cancel(sess Session) Session {
	return sess.cleared()
}

func (f *Flow) deviceTrustActive() bool {
	return f.cfg.TrustedDeviceEnabled && f.devices != nil
}

func (f *Flow) record(ctx context.Context, userID uuid.UUID, action activity.Action, details string, meta activity.Meta) {
	if f.recorder == nil {
		return
	}
	f.recorder.Record(ctx, userID, action, details, meta)
}

func (f *Flow) notify(ctx context.Context, userID uuid.UUID, event Event) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.Notify(ctx, userID, event); err != nil {
		f.logger.ErrorContext(ctx, "notification failed",
			"user_id", userID, "event", event.Kind.String(), "error", err)
	}
}
