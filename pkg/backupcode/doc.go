// Package backupcode issues and redeems single-use recovery codes for users
// who lose access to their authenticator device.
//
// Codes are 8 random digits formatted NNNN-NNNN. Only a SHA-256 hash of each
// code is persisted; the plaintext batch is returned exactly once from
// Generate for one-time display and can never be retrieved again.
//
// Redemption is one-shot by construction: Storage.Consume finds an unused
// row and marks it used in a single operation, so a code that has been
// redeemed (or raced by a concurrent redemption) returns false.
//
//	vault := backupcode.NewVault(storage)
//
//	codes, _ := vault.Generate(ctx, userID, 10) // show these once
//
//	ok, _ := vault.Consume(ctx, userID, "1234-5678")
//
// Rate limiting is not this package's concern; the credential verifier runs
// backup-code redemption behind the same lockout counters as TOTP codes.
package backupcode
