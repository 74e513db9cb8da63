package login

import "errors"

var (
	// ErrNoPendingLogin indicates a code was submitted without a pending
	// handshake, e.g. after the session expired or was cancelled.
	ErrNoPendingLogin = errors.New("no pending login")
)
