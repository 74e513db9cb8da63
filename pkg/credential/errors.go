package credential

import "errors"

var (
	// ErrNotFound indicates the user has no second-factor credential configured.
	ErrNotFound = errors.New("credential not found")
)
