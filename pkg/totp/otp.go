package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"hash"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits       = 6      // Standard 6-digit codes
	DefaultPeriod       = 30     // 30-second validity window (RFC 6238 standard)
	DefaultDrift        = 1      // Accept one step of clock drift in either direction
	DefaultAlgorithm    = "SHA1" // HMAC-SHA1 (RFC 6238 standard)
	DefaultSecretLength = 20     // 160-bit secret (RFC 4226 recommendation)
)

// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding.
var ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// Params controls code derivation. The zero value is usable; WithDefaults
// fills in the RFC 6238 standard values.
type Params struct {
	Digits    int    // Number of digits in generated codes (6-8)
	Period    int    // Code validity period in seconds
	Algorithm string // HMAC algorithm: SHA1, SHA256 or SHA512
	Drift     int    // Accepted clock drift in time steps on either side
}

// WithDefaults returns a copy with standard values applied to zero-valued fields.
func (p Params) WithDefaults() Params {
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Drift == 0 {
		p.Drift = DefaultDrift
	}
	return p
}

func (p Params) validate() error {
	if p.Digits < 6 || p.Digits > 8 {
		return ErrInvalidDigits
	}
	if _, err := hashFunc(p.Algorithm); err != nil {
		return err
	}
	return nil
}

func hashFunc(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(algorithm) {
	case "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// GenerateSecretKey generates a new 160-bit Base32-encoded secret key.
func GenerateSecretKey() (string, error) {
	return GenerateSecretKeyOfLength(DefaultSecretLength)
}

// GenerateSecretKeyOfLength generates a Base32-encoded secret of byteLength
// random bytes. It fails with ErrEntropyUnavailable when the CSPRNG cannot
// deliver, rather than falling back to a weaker source.
func GenerateSecretKeyOfLength(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultSecretLength
	}
	secret := make([]byte, byteLength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrEntropyUnavailable, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// DecodeSecret decodes a Base32 secret into raw key bytes. Characters outside
// the RFC 4648 alphabet (spaces, dashes, padding) are skipped instead of
// rejected because authenticator apps often display secrets in groups of four.
func DecodeSecret(secret string) ([]byte, error) {
	var b strings.Builder
	for _, c := range strings.ToUpper(secret) {
		if (c >= 'A' && c <= 'Z') || (c >= '2' && c <= '7') {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(b.String())
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// CodeAt derives the code for the time step containing at.
func CodeAt(secret string, at time.Time, params Params) (string, error) {
	params = params.WithDefaults()
	if err := params.validate(); err != nil {
		return "", err
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := at.Unix() / int64(params.Period)
	return hotp(key, counter, params)
}

// GenerateCode derives the code for the current time step.
func GenerateCode(secret string, params Params) (string, error) {
	return CodeAt(secret, time.Now(), params)
}

// Verify reports whether candidate matches the code for any time step within
// params.Drift steps of at. Comparison is constant-time per candidate window
// to resist timing attacks.
func Verify(secret, candidate string, at time.Time, params Params) (bool, error) {
	params = params.WithDefaults()
	if err := params.validate(); err != nil {
		return false, err
	}

	candidate = strings.TrimSpace(candidate)
	if !isDigits(candidate, params.Digits) {
		return false, ErrInvalidCode
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return false, err
	}

	counter := at.Unix() / int64(params.Period)
	matched := false
	for i := -params.Drift; i <= params.Drift; i++ {
		code, err := hotp(key, counter+int64(i), params)
		if err != nil {
			return false, err
		}
		// No early exit: every window is checked so verification time does
		// not depend on which window matched.
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched, nil
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64, params Params) (string, error) {
	// Counter as big-endian 8-byte array (RFC 4226 requirement).
	// int64 arithmetic keeps the time counter valid past 2038.
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	newHash, err := hashFunc(params.Algorithm)
	if err != nil {
		return "", err
	}
	mac := hmac.New(newHash, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226 section 5.3): low 4 bits of the last byte
	// select a 4-byte slice, MSB cleared to keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	value := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	modulo := 1
	for range params.Digits {
		modulo *= 10
	}

	return fmt.Sprintf("%0*d", params.Digits, value%modulo), nil
}

// SecondsRemaining returns how many seconds are left in the current time
// step, for UI countdowns.
func SecondsRemaining(period int) int {
	if period <= 0 {
		period = DefaultPeriod
	}
	return period - int(time.Now().Unix()%int64(period))
}

// URIParams contains the parameters for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required URI parameters are present and valid.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// ProvisioningURI creates a properly encoded otpauth:// URI for authenticator
// apps. The format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	if params.Algorithm == "" {
		params.Algorithm = DefaultAlgorithm
	}
	if params.Digits == 0 {
		params.Digits = DefaultDigits
	}
	if params.Period == 0 {
		params.Period = DefaultPeriod
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", strings.ToUpper(params.Algorithm))
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
