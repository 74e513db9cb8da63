package trusteddevice

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Device is a time-boxed trust grant for a (user, fingerprint) pair. While
// the grant is valid the login flow skips the second factor for requests
// carrying the same fingerprint.
type Device struct {
	UserID       uuid.UUID
	Fingerprint  string // see pkg/fingerprint
	Label        string // human-readable bucket derived from the User-Agent
	UserAgent    string // raw header, truncated for display on device lists
	IPAddress    string
	TrustedUntil time.Time
	CreatedAt    time.Time
	LastSeenAt   time.Time // zero value means never seen since the grant
}

// Expired reports whether the grant has lapsed.
func (d *Device) Expired(now time.Time) bool {
	return !d.TrustedUntil.After(now)
}

// Metadata carries the client signals recorded alongside a trust grant.
type Metadata struct {
	UserAgent string
	IPAddress string
}

// DetectLabel buckets a User-Agent into a coarse platform name for device
// lists. Best effort only; unrecognised agents get a generic label.
func DetectLabel(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		return "Apple iOS"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "Windows"):
		return "Windows PC"
	case strings.Contains(userAgent, "Macintosh"):
		return "Mac"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	default:
		return "Unknown device"
	}
}
