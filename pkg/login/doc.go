// Package login sequences the multi-step authentication handshake: the host
// verifies the password, this flow decides whether a second factor is owed
// and validates the submitted code.
//
// # State machine
//
//	PasswordPending → SecondFactorRequired → Authenticated
//
// A user without an enabled credential, or on a trusted device, goes
// straight to Authenticated. A failed, replayed or rate-limited code leaves
// the session in SecondFactorRequired; the handshake never reaches
// Authenticated through a failure path. Cancel (or the host expiring the
// session) returns to PasswordPending.
//
// # Design
//
// The handshake state is an explicit Session value passed in and returned
// from every call: the host's session layer stores it, this package never
// touches ambient global state. Likewise the host invokes the flow
// explicitly (OnFirstFactorVerified, OnCodeSubmitted, Cancel) instead of any
// name-based hook dispatch.
//
//	flow := login.NewFlow(store, verifier, vault,
//	    login.WithDeviceRegistry(registry),
//	    login.WithNotifier(notifier),
//	    login.WithConfig(cfg),
//	)
//
//	// host verified the password:
//	sess, res, err := flow.OnFirstFactorVerified(ctx, sess, userID, req)
//	if res.State == login.StateSecondFactorRequired {
//	    // render the code prompt
//	}
//
//	// user submitted a code:
//	sess, res, err = flow.OnCodeSubmitted(ctx, sess, code, login.ModeTOTP, req)
//
// Result.Outcome carries the reason code (invalid, rate_limited,
// code_already_used) for user messaging. The flow does not reveal whether a
// failed submission was treated as a TOTP or backup code beyond what the
// caller already chose via Mode.
package login
