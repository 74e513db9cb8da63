package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultSize is the image edge length in pixels when none is given.
	DefaultSize = 256
	// MaxSize caps the edge length; larger requests are clamped rather
	// than rejected so a misconfigured size cannot produce multi-megabyte
	// inline images.
	MaxSize = 1024
)

func clampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}

// Generate renders content as a QR code PNG. Medium error correction is
// used throughout; it is what authenticator apps are calibrated for and
// keeps the module count low enough to scan from a laptop screen.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, clampSize(size))
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURL renders content as a PNG wrapped in a data: URL, ready to drop
// into an img src attribute without the host serving a separate image.
func DataURL(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ProvisioningDataURL renders an otpauth:// provisioning URI as an inline
// PNG data URL for the enrollment screen. Anything that is not an otpauth
// URI is rejected, so a caller bug cannot put an arbitrary string in front
// of a user's authenticator app.
func ProvisioningDataURL(uri string, size int) (string, error) {
	if !strings.HasPrefix(uri, "otpauth://") {
		return "", ErrNotProvisioningURI
	}
	return DataURL(uri, size)
}
