// Package totp implements the time-based one-time password algorithms from
// RFC 6238 and RFC 4226 together with AES-256-GCM helpers for persisting
// secrets at rest.
//
// The package is the pure math core of the second-factor flow: it performs
// no I/O and holds no state. Higher layers (credential verification, the
// login handshake, enrollment) build on it.
//
// # Architecture
//
//   - otp.go    – secret key generation (GenerateSecretKey), HOTP/TOTP code
//     derivation (CodeAt, GenerateCode, Verify) and provisioning URI
//     construction (ProvisioningURI) for Google Authenticator, 1Password and
//     compatible apps.
//   - cipher.go – Cipher encrypts/decrypts secrets with AES-256-GCM using a
//     per-call nonce, plus key generation utilities for operators.
//   - config.go – env tag aware loader; the required environment variable is
//     MFA_ENCRYPTION_KEY and it must hold a base64 encoded 32-byte key.
//
// # Usage
//
// The minimal happy path for enrolling a user:
//
//	secret, _ := totp.GenerateSecretKey()
//
//	cfg, _ := totp.LoadConfig()
//	cipher, _ := totp.NewCipherFromConfig(cfg)
//	encSecret, _ := cipher.EncryptSecret(secret)
//	// persist encSecret; show the URI below as a QR code
//
//	uri, _ := totp.ProvisioningURI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//
//	// later, validate a code the user typed in
//	ok, _ := totp.Verify(secret, "123456", time.Now(), totp.Params{})
//
// Verification accepts codes from the adjacent time steps (Params.Drift,
// default one step on either side, i.e. a 90-second effective window) and
// compares candidates in constant time.
//
// # Error Handling
//
// Every exported operation returns a descriptive error that may be wrapped
// with errors.Join. Inspect errors with errors.Is against package sentinels
// such as ErrInvalidSecret, ErrDecryptionFailed or ErrEntropyUnavailable.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
