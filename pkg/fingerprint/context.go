package fingerprint

import (
	"context"
)

type fingerprintContextKey struct{}

// SetToContext stores the fingerprint in the context.
func SetToContext(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, fingerprintContextKey{}, fingerprint)
}

// FromContext retrieves the fingerprint from the context, or "" if absent.
func FromContext(ctx context.Context) string {
	fingerprint, _ := ctx.Value(fingerprintContextKey{}).(string)
	return fingerprint
}
