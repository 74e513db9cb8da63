// Package qrcode renders otpauth:// provisioning URIs as QR code PNGs for
// the enrollment screen, either raw bytes or a base64 data URL for direct
// use in an HTML img tag.
//
// ProvisioningDataURL is the intended entry point: it refuses anything
// that is not an otpauth URI. Generate and DataURL are the general
// building blocks underneath. Rendering the page that displays the image
// is the host's concern.
package qrcode
