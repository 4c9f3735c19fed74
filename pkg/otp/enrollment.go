package otp

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/identitykit/pkg/clock"
)

// Type selects between time-based and counter-based codes.
type Type string

const (
	TypeTOTP Type = "totp"
	TypeHOTP Type = "hotp"
)

// ParseType accepts "totp" or "hotp" in any case. Empty means TOTP.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeTOTP:
		return TypeTOTP, nil
	case TypeHOTP:
		return TypeHOTP, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Enrollment is the OTP profile returned by the identity service when a
// device enrolls as an authenticator.
type Enrollment struct {
	AlgorithmCode int    `json:"algorithm_code" yaml:"algorithm_code"`
	Secret        string `json:"secret" yaml:"secret"`
	Digits        int    `json:"digits" yaml:"digits"`
	PeriodSeconds int    `json:"period_seconds" yaml:"period_seconds"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	Counter       uint64 `json:"counter,omitempty" yaml:"counter,omitempty"`
	AccountName   string `json:"account_name,omitempty" yaml:"account_name,omitempty"`
	Issuer        string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
}

// Spec converts the enrollment into a validated Spec. The secret string is
// used as raw key bytes (its UTF-8 encoding). Counter-based enrollments may
// omit the period; it then defaults to DefaultPeriod.
func (e Enrollment) Spec() (Spec, error) {
	alg, err := AlgorithmFromCode(e.AlgorithmCode)
	if err != nil {
		return Spec{}, errors.Join(ErrInvalidSpec, err)
	}
	typ, err := ParseType(e.Type)
	if err != nil {
		return Spec{}, errors.Join(ErrInvalidSpec, err)
	}
	period := e.PeriodSeconds
	if typ == TypeHOTP && period == 0 {
		period = DefaultPeriod
	}
	return NewSpec(alg, []byte(e.Secret), e.Digits, period)
}

// Code generates the current one-time code for the enrollment: a TOTP for
// time-based profiles, or the HOTP at Counter for counter-based ones.
func (e Enrollment) Code(c clock.Clock) (string, error) {
	spec, err := e.Spec()
	if err != nil {
		return "", err
	}
	typ, _ := ParseType(e.Type)
	if typ == TypeHOTP {
		return HOTP(spec, e.Counter)
	}
	return TOTP(spec, c)
}

// KeyURI returns the otpauth:// representation of the enrollment.
func (e Enrollment) KeyURI() (KeyURI, error) {
	spec, err := e.Spec()
	if err != nil {
		return KeyURI{}, err
	}
	typ, _ := ParseType(e.Type)
	return KeyURI{
		Type:        typ,
		Spec:        spec,
		AccountName: e.AccountName,
		Issuer:      e.Issuer,
		Counter:     e.Counter,
	}, nil
}

// Verify checks code against the enrollment. Time-based profiles accept skew
// windows either side of the current one; counter-based profiles compare
// against the code at Counter only.
func (e Enrollment) Verify(code string, c clock.Clock, skew int) (bool, error) {
	spec, err := e.Spec()
	if err != nil {
		return false, err
	}
	typ, _ := ParseType(e.Type)
	if typ == TypeHOTP {
		return VerifyHOTP(spec, code, e.Counter), nil
	}
	return Verify(spec, code, c, skew), nil
}
