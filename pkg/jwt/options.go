package jwt

import (
	"log/slog"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/identitykit/pkg/clock"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the time source used for expiry checks.
func WithClock(c clock.Clock) Option {
	return func(e *Evaluator) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger that records rejected tokens.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLeeway tolerates clock drift: a token stays valid for d after exp.
func WithLeeway(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.leeway = d
		}
	}
}

// WithVerifier turns on signature verification. keyfunc resolves the
// verification key; methods restricts the accepted alg header values
// (for example "RS256"). Without this option signatures are not checked.
func WithVerifier(keyfunc gojwt.Keyfunc, methods ...string) Option {
	return func(e *Evaluator) {
		e.keyfunc = keyfunc
		e.methods = append([]string(nil), methods...)
	}
}
