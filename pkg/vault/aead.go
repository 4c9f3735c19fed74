package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of every vault key: AES-256 and XChaCha20 both take
// 32 bytes.
const KeySize = 32

// Cipher names an AEAD construction.
type Cipher string

const (
	CipherAESGCM            Cipher = "aes-gcm"            // 12-byte nonce
	CipherXChaCha20Poly1305 Cipher = "xchacha20-poly1305" // 24-byte nonce
)

// ParseCipher maps a configuration value to a Cipher. Empty selects AES-GCM.
func ParseCipher(s string) (Cipher, error) {
	switch c := Cipher(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CipherAESGCM, nil
	case CipherAESGCM, CipherXChaCha20Poly1305:
		return c, nil
	default:
		return "", ErrUnknownCipher
	}
}

// NonceSize returns the nonce length of c.
func (c Cipher) NonceSize() int {
	switch c {
	case CipherXChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX
	default:
		return 12
	}
}

func (c Cipher) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	switch c {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case CipherXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	default:
		return nil, errors.Join(ErrUnknownCipher, errors.New(string(c)))
	}
}
