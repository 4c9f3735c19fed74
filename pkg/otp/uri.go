package otp

import (
	"encoding/base32"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// KeyURI is an otpauth:// key URI as understood by authenticator apps.
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
type KeyURI struct {
	Type        Type
	Spec        Spec
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Counter     uint64 // Initial counter, HOTP only
}

// Validate ensures the URI can be encoded.
func (k KeyURI) Validate() error {
	if err := k.Spec.validate(); err != nil {
		return err
	}
	if _, err := ParseType(string(k.Type)); err != nil {
		return err
	}
	if k.AccountName == "" {
		return ErrMissingAccountName
	}
	if k.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// Encode renders the URI. The secret is base32 encoded without padding.
func (k KeyURI) Encode() (string, error) {
	if err := k.Validate(); err != nil {
		return "", err
	}
	typ, _ := ParseType(string(k.Type))

	label := url.PathEscape(k.Issuer) + ":" + url.PathEscape(k.AccountName)

	query := url.Values{}
	query.Set("secret", base32NoPad.EncodeToString(k.Spec.secret))
	query.Set("issuer", k.Issuer)
	query.Set("algorithm", k.Spec.algorithm.String())
	query.Set("digits", strconv.Itoa(k.Spec.digits))
	if typ == TypeHOTP {
		query.Set("counter", strconv.FormatUint(k.Counter, 10))
	} else {
		query.Set("period", strconv.Itoa(k.Spec.period))
	}

	return "otpauth://" + string(typ) + "/" + label + "?" + query.Encode(), nil
}

// URI builds a time-based otpauth:// key URI for spec.
func URI(spec Spec, accountName, issuer string) (string, error) {
	return KeyURI{Type: TypeTOTP, Spec: spec, AccountName: accountName, Issuer: issuer}.Encode()
}

// ParseURI parses an otpauth:// key URI. Missing algorithm, digits and period
// parameters take the RFC 6238 defaults.
func ParseURI(raw string) (KeyURI, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return KeyURI{}, errors.Join(ErrInvalidURI, err)
	}
	if u.Scheme != "otpauth" {
		return KeyURI{}, ErrInvalidURI
	}
	typ, err := ParseType(u.Host)
	if err != nil {
		return KeyURI{}, errors.Join(ErrInvalidURI, err)
	}

	var k KeyURI
	k.Type = typ

	label := strings.TrimPrefix(u.Path, "/")
	if issuer, account, ok := strings.Cut(label, ":"); ok {
		k.Issuer = strings.TrimSpace(issuer)
		k.AccountName = strings.TrimSpace(account)
	} else {
		k.AccountName = strings.TrimSpace(label)
	}

	q := u.Query()
	if issuer := q.Get("issuer"); issuer != "" {
		k.Issuer = issuer
	}

	secret := strings.ToUpper(strings.TrimRight(strings.TrimSpace(q.Get("secret")), "="))
	key, err := base32NoPad.DecodeString(secret)
	if err != nil || len(key) == 0 {
		return KeyURI{}, errors.Join(ErrInvalidURI, ErrInvalidSecret)
	}

	alg := SHA1
	if v := q.Get("algorithm"); v != "" {
		if alg, err = ParseAlgorithm(v); err != nil {
			return KeyURI{}, errors.Join(ErrInvalidURI, err)
		}
	}
	digits, err := intParam(q, "digits", DefaultDigits)
	if err != nil {
		return KeyURI{}, err
	}
	period, err := intParam(q, "period", DefaultPeriod)
	if err != nil {
		return KeyURI{}, err
	}
	if v := q.Get("counter"); v != "" {
		if k.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return KeyURI{}, errors.Join(ErrInvalidURI, err)
		}
	}

	if k.Spec, err = NewSpec(alg, key, digits, period); err != nil {
		return KeyURI{}, errors.Join(ErrInvalidURI, err)
	}
	return k, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Join(ErrInvalidURI, err)
	}
	return n, nil
}
