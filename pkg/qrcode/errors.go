package qrcode

import "errors"

var (
	ErrEmptyContent       = errors.New("content cannot be empty")
	ErrNotProvisioningURI = errors.New("not an otpauth provisioning URI")
	ErrGenerationFailed   = errors.New("failed to generate QR code")
)
