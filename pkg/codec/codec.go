package codec

import (
	"crypto"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf8"
)

// CounterSize is the width of a packed HOTP moving factor.
const CounterSize = 8

// PutCounter packs counter as 8 unsigned big-endian bytes.
func PutCounter(counter uint64) [CounterSize]byte {
	var b [CounterSize]byte
	binary.BigEndian.PutUint64(b[:], counter)
	return b
}

// EncodeBase64URL encodes data with the URL-safe alphabet and no padding.
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL decodes URL-safe base64 with or without trailing padding.
// Compact tokens normally omit padding but some issuers keep it.
func DecodeBase64URL(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidBase64, err)
	}
	return data, nil
}

// EncodeBase64 encodes data with the standard padded alphabet.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard padded base64.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidBase64, err)
	}
	return data, nil
}

// ASCIIBytes returns the bytes of s, rejecting anything outside 7-bit ASCII.
func ASCIIBytes(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return nil, ErrNonASCII
		}
	}
	return []byte(s), nil
}

// UTF8String converts data to a string, rejecting invalid UTF-8 sequences.
func UTF8String(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) ([]byte, error) {
	if !crypto.SHA256.Available() {
		return nil, ErrCryptoUnavailable
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}
