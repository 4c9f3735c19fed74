package otp

import (
	"errors"

	"github.com/dmitrymomot/identitykit/pkg/config"
)

// Config holds the process-wide OTP settings.
type Config struct {
	// Windows accepted on either side of the current one.
	VerifySkew int `env:"OTP_VERIFY_SKEW" envDefault:"1"`
	// Enrollment QR image size in pixels.
	QRSize int `env:"OTP_QR_SIZE" envDefault:"256"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.VerifySkew < 0 {
		return Config{}, errors.Join(ErrInvalidConfig, errors.New("OTP_VERIFY_SKEW must not be negative"))
	}
	return cfg, nil
}
