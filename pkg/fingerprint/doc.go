// Package fingerprint derives a deterministic device identifier from
// client-supplied HTTP signals (User-Agent and Accept-Language), hashed with
// SHA-256 into a 64-character hex string. The trusted-device registry stores
// it to recognise a browser on later logins.
//
// # This is not a security boundary
//
// Every input is attacker-controlled: anyone who knows (or guesses) a
// victim's User-Agent and Accept-Language headers can produce the same
// fingerprint. Treat the trusted-device feature built on top of it as a UX
// convenience that skips the second factor on a recognised browser, never
// as an authentication factor in its own right. The second factor itself is
// what carries the security guarantee.
//
// # Usage
//
//	fp := fingerprint.FromRequest(r)
//
// or from raw header values outside an HTTP handler:
//
//	fp := fingerprint.Generate(userAgent, acceptLanguage)
//
// Middleware computes the fingerprint once per request and stores it in the
// request context; FromContext retrieves it downstream.
package fingerprint
