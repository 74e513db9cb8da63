package backupcode

import "errors"

var (
	ErrEntropyUnavailable = errors.New("system entropy source unavailable")
	ErrFailedToStoreCodes = errors.New("failed to store backup codes")
)
