// Package pgstore provides PostgreSQL persistence for the second-factor
// stores using the pgx/v5 driver, plus the connection pool, health check and
// goose migration plumbing needed to bootstrap it.
//
// The package implements four storage interfaces from the domain packages:
//
//   - credential.Store via CredentialStore
//   - backupcode.Storage via BackupCodeStore
//   - trusteddevice.Storage via TrustedDeviceStore
//   - activity.Storage via ActivityStore
//
// All mutation primitives that the domain layer documents as atomic run as
// single conditional SQL statements (UPDATE ... WHERE used = FALSE, counter
// increments with RETURNING, upserts on the natural key), so correctness
// does not depend on application-level locking.
//
// Schema migrations are embedded in the binary and applied with goose:
//
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pgstore.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
//	creds := pgstore.NewCredentialStore(pool)
//	codes := pgstore.NewBackupCodeStore(pool)
package pgstore
