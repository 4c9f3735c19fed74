package pkce

import (
	"errors"

	"github.com/dmitrymomot/identitykit/pkg/codec"
)

var (
	ErrInvalidVerifier   = errors.New("pkce: invalid code verifier")
	ErrRandomUnavailable = errors.New("pkce: failed to read random bytes")
	ErrCryptoUnavailable = codec.ErrCryptoUnavailable
)
