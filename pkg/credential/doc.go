// Package credential owns the second-factor credential record and the
// verification workflow that runs over it: brute-force lockout, replay
// protection, secret decryption and TOTP comparison.
//
// # Architecture
//
//   - Credential – the per-user record holding the encrypted secret, the
//     enabled flag, the pinned last-used code and the failure counters.
//   - Store – the persistence gateway interface. The package never issues
//     SQL; implementations live in pkg/pgstore (Postgres) and in
//     memory_store.go for tests and single-process use. RecordFailure and
//     RecordSuccess are atomic so two concurrent submissions for the same
//     user cannot race the counters.
//   - LockoutPolicy – stateless rate limiting evaluated over the counters
//     embedded in the credential (5 failures / 60s cooldown by default),
//     identical for the TOTP and backup-code paths.
//   - Verifier – sequences the checks and persists the result.
//
// # Usage
//
//	verifier := credential.NewVerifier(store, cipher)
//
//	cred, err := store.Get(ctx, userID)
//	if err != nil { ... }
//
//	outcome, err := verifier.VerifyTOTP(ctx, cred, "123456", time.Now())
//	switch outcome {
//	case credential.OutcomeValid:
//	    // fully authenticated
//	case credential.OutcomeRateLimited:
//	    // ask the user to wait
//	default:
//	    // generic "invalid code" message
//	}
//
// The lockout check runs before any cryptographic work so locked-out
// attempts stay cheap, and a replayed code is rejected and counted as a
// failure even though it would still match a window.
package credential
