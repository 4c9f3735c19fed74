package jwt

import (
	"errors"
	"log/slog"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/identitykit/pkg/clock"
	"github.com/dmitrymomot/identitykit/pkg/logger"
)

// Evaluator decides whether a bearer token is still usable. It is safe for
// concurrent use.
type Evaluator struct {
	clock   clock.Clock
	logger  *slog.Logger
	leeway  time.Duration
	keyfunc gojwt.Keyfunc
	methods []string
}

// New creates an Evaluator. By default it uses the system clock, slog's
// default logger, zero leeway and no signature verification.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		clock:  clock.System(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsTokenValid reports whether token is a well-formed JWT whose exp claim is
// not yet in the past. Every failure is logged and reported as false.
func (e *Evaluator) IsTokenValid(token string) bool {
	if _, err := e.Claims(token); err != nil {
		e.logger.Info("token rejected",
			logger.Component("jwt"),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Claims decodes token, verifies its signature when a verifier is
// configured, and checks the expiry against the clock.
func (e *Evaluator) Claims(token string) (Claims, error) {
	c, err := Decode(token)
	if err != nil {
		return Claims{}, err
	}
	if err := e.verify(token); err != nil {
		return Claims{}, err
	}

	now := e.clock.Now().UnixMilli()
	if now > c.expMillis()+e.leeway.Milliseconds() {
		return Claims{}, ErrExpiredToken
	}
	return c, nil
}

// ExpiresIn returns the time left until exp. The result is negative for an
// expired token; errors are returned only for tokens that cannot be decoded
// or fail verification.
func (e *Evaluator) ExpiresIn(token string) (time.Duration, error) {
	c, err := Decode(token)
	if err != nil {
		return 0, err
	}
	if err := e.verify(token); err != nil {
		return 0, err
	}
	return c.ExpiresAt.Sub(e.clock.Now()), nil
}

// ExpiresWithin reports whether token is invalid or expires in d or less.
// Clients use it to refresh ahead of expiry.
func (e *Evaluator) ExpiresWithin(token string, d time.Duration) bool {
	left, err := e.ExpiresIn(token)
	if err != nil {
		e.logger.Info("token rejected",
			logger.Component("jwt"),
			logger.Error(err),
		)
		return true
	}
	return left <= d
}

func (e *Evaluator) verify(token string) error {
	if e.keyfunc == nil {
		return nil
	}

	opts := []gojwt.ParserOption{gojwt.WithoutClaimsValidation()}
	if len(e.methods) > 0 {
		opts = append(opts, gojwt.WithValidMethods(e.methods))
	}

	parsed, err := gojwt.NewParser(opts...).Parse(token, e.keyfunc)
	if err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}
	if !parsed.Valid {
		return ErrInvalidSignature
	}
	return nil
}
