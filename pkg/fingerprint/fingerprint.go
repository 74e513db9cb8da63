package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Generate creates a device fingerprint from client-supplied signals. It
// hashes a normalized concatenation of the User-Agent and Accept-Language
// values with SHA-256 and returns the hex digest.
//
// The same browser produces the same fingerprint across requests, which is
// what the trusted-device feature needs. Both inputs are client-supplied
// and trivially copied, so this is a convenience identifier, not a security
// boundary; see the package documentation.
func Generate(userAgent, acceptLanguage string) string {
	combined := normalize(userAgent) + "|" + normalize(acceptLanguage)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

// FromRequest generates the fingerprint for an incoming HTTP request.
func FromRequest(r *http.Request) string {
	return Generate(r.UserAgent(), r.Header.Get("Accept-Language"))
}

// Validate compares the current request fingerprint with a stored one.
func Validate(r *http.Request, stored string) bool {
	return FromRequest(r) == stored
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
