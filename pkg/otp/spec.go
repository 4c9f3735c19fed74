package otp

import (
	"errors"
	"time"
)

const (
	MinDigits     = 1
	MaxDigits     = 8
	DefaultDigits = 6  // Standard 6-digit codes
	DefaultPeriod = 30 // 30-second window (RFC 6238)
)

// digitsPower bounds the supported digit counts: 10^8 is the largest modulus
// that keeps every code inside the 31-bit truncated value's range.
var digitsPower = [MaxDigits + 1]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// Spec holds the parameters of one OTP derivation. The zero value is not
// usable; build it with NewSpec or Enrollment.Spec.
type Spec struct {
	algorithm Algorithm
	secret    []byte
	digits    int
	period    int
}

// NewSpec validates the parameters and returns an immutable Spec.
// Every failure wraps ErrInvalidSpec so callers can treat them uniformly as
// configuration errors.
func NewSpec(algorithm Algorithm, secret []byte, digits, period int) (Spec, error) {
	s := Spec{
		algorithm: algorithm,
		secret:    append([]byte(nil), secret...),
		digits:    digits,
		period:    period,
	}
	if err := s.validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// MustSpec is like NewSpec but panics on error. Intended for constants in tests.
func MustSpec(algorithm Algorithm, secret []byte, digits, period int) Spec {
	s, err := NewSpec(algorithm, secret, digits, period)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) validate() error {
	switch {
	case !s.algorithm.Valid():
		return errors.Join(ErrInvalidSpec, ErrUnsupportedAlgorithm)
	case !s.algorithm.available():
		return errors.Join(ErrInvalidSpec, ErrCryptoUnavailable)
	case s.digits < MinDigits || s.digits > MaxDigits:
		return errors.Join(ErrInvalidSpec, ErrUnsupportedDigits)
	case len(s.secret) == 0:
		return errors.Join(ErrInvalidSpec, ErrInvalidSecret)
	case s.period <= 0:
		return errors.Join(ErrInvalidSpec, ErrInvalidPeriod)
	}
	return nil
}

func (s Spec) Algorithm() Algorithm { return s.algorithm }

func (s Spec) Digits() int { return s.digits }

// Period returns the TOTP time step.
func (s Spec) Period() time.Duration { return time.Duration(s.period) * time.Second }

// Secret returns a copy of the raw key.
func (s Spec) Secret() []byte { return append([]byte(nil), s.secret...) }
