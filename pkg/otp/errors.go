package otp

import (
	"errors"

	"github.com/dmitrymomot/identitykit/pkg/codec"
)

var (
	// ErrInvalidSpec marks every configuration error raised while building a Spec.
	ErrInvalidSpec          = errors.New("otp: invalid spec")
	ErrUnsupportedAlgorithm = errors.New("otp: unsupported algorithm")
	ErrUnsupportedDigits    = errors.New("otp: unsupported digits, must be between 1 and 8")
	ErrInvalidSecret        = errors.New("otp: invalid secret")
	ErrInvalidPeriod        = errors.New("otp: invalid period, must be positive")
	ErrUnsupportedType      = errors.New("otp: unsupported otp type")
	ErrCryptoUnavailable    = codec.ErrCryptoUnavailable

	// ErrTruncationOutOfRange is returned when the digest is too short for the
	// 4-byte window selected by dynamic truncation. Only MD5 can hit this.
	ErrTruncationOutOfRange = errors.New("otp: truncation offset exceeds digest length")

	ErrInvalidURI         = errors.New("otp: invalid key uri")
	ErrMissingAccountName = errors.New("otp: missing account name")
	ErrMissingIssuer      = errors.New("otp: missing issuer")

	ErrEmptyQRContent     = errors.New("otp: qr content cannot be empty")
	ErrFailedToGenerateQR = errors.New("otp: failed to generate qr code")
	ErrInvalidConfig      = errors.New("otp: invalid config")
)
