package enrollment

import "errors"

var (
	ErrAlreadyEnabled         = errors.New("second factor already enabled")
	ErrNotEnabled             = errors.New("second factor not enabled")
	ErrActivationCodeMismatch = errors.New("activation code does not match")
	ErrTooManyAttempts        = errors.New("too many failed activation attempts")
)
