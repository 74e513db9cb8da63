package totp

import (
	"encoding/base64"
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config holds process-wide TOTP settings loaded from the environment.
// EncryptionKey is required and must be an explicitly provisioned 32-byte
// base64 value; there is deliberately no fallback derivation from other
// configuration, a missing or short key fails closed.
type Config struct {
	EncryptionKey string `env:"MFA_ENCRYPTION_KEY,required"` // Base64-encoded 32-byte AES key for secrets at rest
	Digits        int    `env:"MFA_TOTP_DIGITS" envDefault:"6"`
	Period        int    `env:"MFA_TOTP_PERIOD" envDefault:"30"`
	Algorithm     string `env:"MFA_TOTP_ALGORITHM" envDefault:"SHA1"`
	Drift         int    `env:"MFA_TOTP_DRIFT" envDefault:"1"`
}

// Params returns the code-derivation parameters from the config.
func (c Config) Params() Params {
	return Params{
		Digits:    c.Digits,
		Period:    c.Period,
		Algorithm: c.Algorithm,
		Drift:     c.Drift,
	}.WithDefaults()
}

// LoadConfig loads the configuration from the environment exactly once per
// process. It returns an error when the encryption key is absent or invalid.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		err = env.Parse(&cfg)
		if err == nil && cfg.EncryptionKey == "" {
			err = ErrEncryptionKeyNotSet
		}
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewCipherFromConfig decodes the configured encryption key and builds a
// Cipher from it.
func NewCipherFromConfig(c Config) (*Cipher, error) {
	if c.EncryptionKey == "" {
		return nil, ErrEncryptionKeyNotSet
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKeyLength, err)
	}
	return NewCipher(key)
}
