package otp

import (
	"crypto/hmac"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/identitykit/pkg/clock"
	"github.com/dmitrymomot/identitykit/pkg/codec"
)

// HOTP implements the RFC 4226 HMAC-based one-time password for counter.
// The result is zero-padded to spec's digit count.
func HOTP(spec Spec, counter uint64) (string, error) {
	if err := spec.validate(); err != nil {
		return "", err
	}

	msg := codec.PutCounter(counter)
	mac := hmac.New(spec.algorithm.newHash(), spec.secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte picks a 4-byte window.
	offset := int(sum[len(sum)-1] & 0x0f)
	if offset+4 > len(sum) {
		return "", ErrTruncationOutOfRange
	}
	truncated := uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	code := truncated % digitsPower[spec.digits]
	return fmt.Sprintf("%0*d", spec.digits, code), nil
}

// Counter returns the TOTP moving factor for t: floor(unix seconds / period).
// Instants before the epoch map to counter 0.
func Counter(spec Spec, t time.Time) uint64 {
	if spec.period <= 0 {
		return 0
	}
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs) / uint64(spec.period)
}

// TOTP returns the RFC 6238 code for the current time of c.
func TOTP(spec Spec, c clock.Clock) (string, error) {
	return TOTPAt(spec, clock.OrSystem(c).Now())
}

// TOTPAt returns the RFC 6238 code for the window containing t.
func TOTPAt(spec Spec, t time.Time) (string, error) {
	if err := spec.validate(); err != nil {
		return "", err
	}
	return HOTP(spec, Counter(spec, t))
}

// Verify reports whether code matches the TOTP for the current window of c or
// any window up to skew steps before or after it. Malformed codes never match.
func Verify(spec Spec, code string, c clock.Clock, skew int) bool {
	if spec.validate() != nil || skew < 0 {
		return false
	}
	code = strings.TrimSpace(code)
	if !isNumeric(code, spec.digits) {
		return false
	}

	base := Counter(spec, clock.OrSystem(c).Now())
	matched := 0
	for step := -skew; step <= skew; step++ {
		var counter uint64
		if step < 0 {
			if uint64(-step) > base {
				continue
			}
			counter = base - uint64(-step)
		} else {
			counter = base + uint64(step)
		}
		want, err := HOTP(spec, counter)
		if err != nil {
			continue
		}
		// Check every window so timing does not reveal which one matched.
		matched |= subtle.ConstantTimeCompare([]byte(want), []byte(code))
	}
	return matched == 1
}

// VerifyHOTP reports whether code matches the HOTP value at counter.
func VerifyHOTP(spec Spec, code string, counter uint64) bool {
	code = strings.TrimSpace(code)
	if !isNumeric(code, spec.digits) {
		return false
	}
	want, err := HOTP(spec, counter)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1
}

func isNumeric(s string, length int) bool {
	if length <= 0 || len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
