// Package activity keeps an append-only log of second-factor events:
// enable/disable, login success and failure, backup-code redemption, secret
// regeneration and device-trust changes, each with the requesting IP and
// User-Agent.
//
// Recording is best effort: a failure to write the log is
// reported to the logger and otherwise ignored, because an audit hiccup must
// never block an authentication attempt. Rendering the log is the host
// application's concern; this package only records and lists.
package activity
