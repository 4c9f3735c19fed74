package vault

import "errors"

var (
	// Configuration errors
	ErrInvalidConfig    = errors.New("vault: invalid config")
	ErrInvalidMasterKey = errors.New("vault: master key must be 32 bytes")
	ErrUnknownCipher    = errors.New("vault: unknown cipher")
	ErrUnknownKind      = errors.New("vault: unknown token kind")
	ErrInvalidToken     = errors.New("vault: token must be valid UTF-8")

	// Key store errors
	ErrKeyNotFound         = errors.New("vault: no key for alias")
	ErrKeyDerivationFailed = errors.New("vault: key derivation failed")
	ErrKeyGenerationFailed = errors.New("vault: key generation failed")
	ErrEncryptionFailed    = errors.New("vault: encryption failed")
	ErrDecryptionFailed    = errors.New("vault: decryption failed")

	// Storage errors
	ErrNotFound = errors.New("vault: token not found")
	ErrStorage  = errors.New("vault: storage failure")
)
