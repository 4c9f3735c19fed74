package jwt

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dmitrymomot/identitykit/pkg/codec"
)

// Claims is the decoded payload of a token. Temporal claims that are absent
// are left as zero times.
type Claims struct {
	ExpiresAt time.Time
	IssuedAt  time.Time
	Subject   string
	Issuer    string
	Raw       map[string]any
}

// expMillis is the expiry in milliseconds since the epoch.
func (c Claims) expMillis() int64 {
	return c.ExpiresAt.UnixMilli()
}

// Decode reads the payload segment of token without checking the signature
// or the expiry. The payload may be padded or unpadded base64url.
func Decode(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return Claims{}, ErrMalformedToken
	}

	raw, err := codec.DecodeBase64URL(parts[1])
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidPayload, err)
	}
	text, err := codec.UTF8String(raw)
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidPayload, err)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return Claims{}, errors.Join(ErrInvalidPayload, err)
	}
	if payload == nil || dec.More() {
		return Claims{}, ErrInvalidPayload
	}

	exp, ok, err := numericDate(payload, "exp")
	if err != nil {
		return Claims{}, err
	}
	if !ok {
		return Claims{}, ErrMissingExpiry
	}
	iat, _, err := numericDate(payload, "iat")
	if err != nil {
		return Claims{}, err
	}

	c := Claims{ExpiresAt: exp, IssuedAt: iat, Raw: payload}
	c.Subject, _ = payload["sub"].(string)
	c.Issuer, _ = payload["iss"].(string)
	return c, nil
}

// numericDate reads an RFC 7519 NumericDate. Fractional seconds are kept to
// millisecond precision.
func numericDate(payload map[string]any, name string) (time.Time, bool, error) {
	v, ok := payload[name]
	if !ok || v == nil {
		return time.Time{}, false, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return time.Time{}, false, errors.Join(ErrInvalidPayload, errors.New(name+" is not a number"))
	}
	if secs, err := n.Int64(); err == nil {
		if secs > math.MaxInt64/1000 || secs < math.MinInt64/1000 {
			return time.Time{}, false, errors.Join(ErrInvalidPayload, errors.New(name+" is out of range"))
		}
		return time.UnixMilli(secs * 1000), true, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.Abs(f*1000) >= math.MaxInt64 {
		return time.Time{}, false, errors.Join(ErrInvalidPayload, errors.New(name+" is out of range"))
	}
	return time.UnixMilli(int64(math.Floor(f * 1000))), true, nil
}
