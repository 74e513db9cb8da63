// Package trusteddevice records time-boxed "remember this browser" grants
// that let the login flow skip the second factor on a recognised device.
//
// A grant is keyed by (user, fingerprint), see pkg/fingerprint, and
// carries an expiry between 1 and 90 days. Re-trusting the same device
// replaces the existing grant instead of stacking windows, so each browser
// holds at most one row. A successful lookup refreshes LastSeenAt but never
// extends the expiry.
//
// The fingerprint is built entirely from client-supplied headers and is
// trivially spoofable. This package is therefore a UX feature, not a
// security control: it reduces second-factor friction on devices the user
// already completed 2FA on, and nothing more.
//
//	registry := trusteddevice.NewRegistry(storage)
//
//	ok, _ := registry.IsTrusted(ctx, userID, fp, time.Now())
//	if !ok {
//	    // ... run the second factor, then optionally:
//	    registry.Trust(ctx, userID, fp, 30, trusteddevice.Metadata{
//	        UserAgent: r.UserAgent(),
//	        IPAddress: ip,
//	    })
//	}
package trusteddevice
