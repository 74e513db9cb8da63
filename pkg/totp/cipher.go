package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

const (
	// AESKeySize is the required key size for AES-256 (256 bits / 8 = 32 bytes).
	AESKeySize = 32
)

// Cipher encrypts TOTP secrets at rest with AES-256-GCM. The nonce is
// generated per call and prepended to the ciphertext, so every blob is
// self-contained and tampering is detected on decrypt.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher from a 32-byte key. The key is operator
// provisioned configuration; it is never derived from other settings and
// never stored next to the data it protects.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrEncryptionKeyNotSet
	}
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}
	return &Cipher{key: key}, nil
}

// EncryptSecret encrypts a plaintext secret. Returns a base64-encoded blob
// of nonce || ciphertext || tag.
func (c *Cipher) EncryptSecret(plainText string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, ErrEntropyUnavailable, err)
	}

	cipherText := aesGCM.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(cipherText), nil
}

// DecryptSecret decrypts a blob produced by EncryptSecret. Fails with
// ErrDecryptionFailed on truncated or tampered input, or when decrypted
// with a different key than the one used to encrypt.
func (c *Cipher) DecryptSecret(encoded string) (string, error) {
	cipherText, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(cipherText) < nonceSize {
		return "", errors.Join(ErrDecryptionFailed, ErrCipherTooShort)
	}
	nonce, cipherText := cipherText[:nonceSize], cipherText[nonceSize:]

	plainText, err := aesGCM.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plainText), nil
}

// GenerateEncryptionKey creates a new random 32-byte key suitable for AES-256.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrEntropyUnavailable, err)
	}
	return key, nil
}

// GenerateEncodedEncryptionKey creates a new random 32-byte key and returns
// it base64-encoded, ready to be placed in the MFA_ENCRYPTION_KEY env var.
func GenerateEncodedEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
