package vault

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/identitykit/pkg/codec"
	"github.com/dmitrymomot/identitykit/pkg/config"
)

// Config selects the key store and storage layout.
type Config struct {
	// Base64 encoded 32-byte key. Empty means process-local random keys.
	MasterKey string `env:"VAULT_MASTER_KEY"`
	Cipher    string `env:"VAULT_CIPHER" envDefault:"aes-gcm"`
	KeyPrefix string `env:"VAULT_KEY_PREFIX"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// KeyStore builds the key store described by c: a DerivedKeyStore when a
// master key is set, a MemoryKeyStore otherwise.
func (c Config) KeyStore() (KeyStore, error) {
	ciph, err := ParseCipher(c.Cipher)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if c.MasterKey == "" {
		ks, err := NewMemoryKeyStore(ciph)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		return ks, nil
	}

	master, err := codec.DecodeBase64(c.MasterKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, ErrInvalidMasterKey, err)
	}
	defer clear(master)

	ks, err := NewDerivedKeyStore(master, ciph)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return ks, nil
}

// NewFromConfig builds a Vault from c over store.
func NewFromConfig(c Config, store Store, log *slog.Logger) (*Vault, error) {
	keys, err := c.KeyStore()
	if err != nil {
		return nil, err
	}
	return New(keys, store, WithKeyPrefix(c.KeyPrefix), WithLogger(log))
}

// GenerateEncodedMasterKey returns a new master key in the base64 form
// expected by VAULT_MASTER_KEY.
func GenerateEncodedMasterKey() (string, error) {
	key, err := GenerateMasterKey()
	if err != nil {
		return "", err
	}
	defer clear(key)
	return codec.EncodeBase64(key), nil
}
