package trusteddevice

import "errors"

var (
	ErrNotFound           = errors.New("trusted device not found")
	ErrMissingFingerprint = errors.New("missing device fingerprint")
	ErrFailedToTrust      = errors.New("failed to save trusted device")
)
