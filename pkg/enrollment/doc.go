// Package enrollment manages the second-factor lifecycle around the login
// flow: provisioning a secret, activating it once the user's authenticator
// proves it can produce matching codes, rotating it, and tearing the whole
// configuration down again.
//
// The lifecycle is deliberately two-phase. Setup stores the secret with the
// credential disabled, so an abandoned enrollment never locks a user out;
// only Activate, which requires a valid current code, turns enforcement
// on and issues the one-time backup codes. Disable cascades: credential,
// backup codes and trusted-device grants are removed together.
//
//	svc := enrollment.NewService(store, cipher, vault, "Acme",
//	    enrollment.WithNotifier(notifier),
//	    enrollment.WithDeviceRevoker(registry),
//	)
//
//	setup, _ := svc.Setup(ctx, userID, "alice@example.com")
//	// show setup.QRCodeDataURL and setup.Secret once
//
//	codes, _ := svc.Activate(ctx, userID, "123456", meta)
//	// show the backup codes once
package enrollment
