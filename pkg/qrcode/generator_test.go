package qrcode_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/qrcode"
)

const testURI = "otpauth://totp/Acme:alice?secret=ABCDEFGH"

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("renders a PNG", func(t *testing.T) {
		t.Parallel()

		png, err := qrcode.Generate(testURI, 128)
		require.NoError(t, err)
		require.NotEmpty(t, png)
		// PNG magic bytes
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()

		_, err := qrcode.Generate("   ", 128)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("size is clamped, not rejected", func(t *testing.T) {
		t.Parallel()

		small, err := qrcode.Generate(testURI, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, small)

		huge, err := qrcode.Generate(testURI, 1<<20)
		require.NoError(t, err)
		assert.NotEmpty(t, huge)
	})
}

func TestDataURL(t *testing.T) {
	t.Parallel()

	url, err := qrcode.DataURL(testURI, 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	// The payload must be valid base64 all the way through.
	_, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	assert.NoError(t, err)

	_, err = qrcode.DataURL("", 0)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}

func TestProvisioningDataURL(t *testing.T) {
	t.Parallel()

	url, err := qrcode.ProvisioningDataURL(testURI, 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	for _, uri := range []string{"https://example.com/phish", "totp/Acme:alice", ""} {
		_, err := qrcode.ProvisioningDataURL(uri, 128)
		assert.ErrorIs(t, err, qrcode.ErrNotProvisioningURI, "uri %q", uri)
	}
}
