package totp

import "errors"

var (
	ErrEntropyUnavailable         = errors.New("system entropy source unavailable")
	ErrEncryptionFailed           = errors.New("failed to encrypt TOTP secret")
	ErrDecryptionFailed           = errors.New("failed to decrypt TOTP secret")
	ErrCipherTooShort             = errors.New("cipher text too short")
	ErrInvalidEncryptionKeyLength = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet        = errors.New("TOTP encryption key not set")
	ErrMissingSecret              = errors.New("missing secret")
	ErrInvalidSecret              = errors.New("invalid secret")
	ErrInvalidCode                = errors.New("invalid code format")
	ErrUnsupportedAlgorithm       = errors.New("unsupported HMAC algorithm")
	ErrInvalidDigits              = errors.New("digits must be between 6 and 8")
	ErrMissingAccountName         = errors.New("missing account name")
	ErrMissingIssuer              = errors.New("missing issuer")
)
