package login

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/trusteddevice"
)

var (
	cfg  Config
	once sync.Once
)

// Config holds the login-flow settings loaded from the environment.
type Config struct {
	TrustedDeviceEnabled bool          `env:"MFA_TRUSTED_DEVICE_ENABLED" envDefault:"false"` // Skip the second factor on recognised devices
	TrustedDeviceDays    int           `env:"MFA_TRUSTED_DEVICE_DAYS" envDefault:"30"`       // Trust window length, clamped to 1-90 days
	MaxAttempts          int           `env:"MFA_LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`       // Consecutive failures before lockout
	LockoutCooldown      time.Duration `env:"MFA_LOCKOUT_COOLDOWN" envDefault:"60s"`         // Lockout duration from the last failure
}

// LockoutPolicy returns the brute-force policy from the config.
func (c Config) LockoutPolicy() credential.LockoutPolicy {
	return credential.LockoutPolicy{
		MaxAttempts: c.MaxAttempts,
		Cooldown:    c.LockoutCooldown,
	}
}

// LoadConfig loads the configuration from the environment exactly once per
// process. Out-of-range trust durations are clamped, not rejected.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		err = env.Parse(&cfg)
		if err != nil {
			return
		}
		if cfg.TrustedDeviceDays < trusteddevice.MinTrustDays {
			cfg.TrustedDeviceDays = trusteddevice.MinTrustDays
		}
		if cfg.TrustedDeviceDays > trusteddevice.MaxTrustDays {
			cfg.TrustedDeviceDays = trusteddevice.MaxTrustDays
		}
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
