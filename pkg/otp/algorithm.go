package otp

import (
	"crypto"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"
)

// Algorithm is the keyed hash used by HOTP. The set is closed.
type Algorithm int

const (
	SHA1 Algorithm = iota + 1
	SHA256
	SHA512
	MD5
)

// Enrollment algorithm codes as sent by the identity service.
const (
	CodeSHA1   = 0
	CodeSHA256 = 1
	CodeSHA512 = 2
	CodeMD5    = 3
)

// AlgorithmFromCode maps an enrollment algorithm code to an Algorithm.
func AlgorithmFromCode(code int) (Algorithm, error) {
	switch code {
	case CodeSHA1:
		return SHA1, nil
	case CodeSHA256:
		return SHA256, nil
	case CodeSHA512:
		return SHA512, nil
	case CodeMD5:
		return MD5, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

// ParseAlgorithm accepts names such as "SHA1", "sha-256" or "HmacSHA512".
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "HMAC")
	n = strings.NewReplacer("-", "", "_", "").Replace(n)
	switch n {
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA512":
		return SHA512, nil
	case "MD5":
		return MD5, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA512:
		return "SHA512"
	case MD5:
		return "MD5"
	default:
		return "UNKNOWN"
	}
}

// Code returns the enrollment code of a, or -1 for an unknown algorithm.
func (a Algorithm) Code() int {
	switch a {
	case SHA1:
		return CodeSHA1
	case SHA256:
		return CodeSHA256
	case SHA512:
		return CodeSHA512
	case MD5:
		return CodeMD5
	default:
		return -1
	}
}

func (a Algorithm) cryptoHash() crypto.Hash {
	switch a {
	case SHA1:
		return crypto.SHA1
	case SHA256:
		return crypto.SHA256
	case SHA512:
		return crypto.SHA512
	case MD5:
		return crypto.MD5
	default:
		return 0
	}
}

func (a Algorithm) newHash() func() hash.Hash {
	switch a {
	case SHA1:
		return sha1.New
	case SHA256:
		return sha256.New
	case SHA512:
		return sha512.New
	case MD5:
		return md5.New
	default:
		return nil
	}
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	return a.newHash() != nil
}

func (a Algorithm) available() bool {
	h := a.cryptoHash()
	return h != 0 && h.Available()
}
