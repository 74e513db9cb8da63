package activity

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action identifies a second-factor lifecycle event.
type Action string

const (
	ActionEnabled           Action = "2fa_enabled"
	ActionDisabled          Action = "2fa_disabled"
	ActionLoginSuccess      Action = "login_success"
	ActionLoginFailed       Action = "login_failed"
	ActionBackupCodeUsed    Action = "backup_code_used"
	ActionSecretRegenerated Action = "secret_regenerated"
	ActionDeviceTrusted     Action = "device_trusted"
	ActionDeviceRevoked     Action = "device_revoked"
)

// Entry is one recorded event.
type Entry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Action    Action
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Meta carries the request attributes logged with an event.
type Meta struct {
	IPAddress string
	UserAgent string
}

// Storage is the append-only persistence gateway for the activity log.
type Storage interface {
	Insert(ctx context.Context, entry *Entry) error

	// ListByUser returns the user's entries, newest first. A userID of
	// uuid.Nil lists entries across all users.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error)
}

// Recorder writes second-factor events to the activity log. Recording is
// best effort: a storage failure is logged and swallowed so that an audit
// hiccup never blocks an authentication attempt.
type Recorder struct {
	storage Storage
	logger  *slog.Logger
}

// RecorderOption configures a Recorder during construction.
type RecorderOption func(*Recorder)

// WithLogger configures the logger used for storage failures.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a recorder backed by the given storage.
func NewRecorder(storage Storage, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends an event for the user.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, action Action, details string, meta Meta) {
	userAgent := meta.UserAgent
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}

	entry := &Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}

	if err := r.storage.Insert(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to record activity",
			"user_id", userID, "action", action, "error", err)
	}
}

// List returns recorded entries for display, newest first.
func (r *Recorder) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.storage.ListByUser(ctx, userID, limit, offset)
}
