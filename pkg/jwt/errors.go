package jwt

import "errors"

var (
	ErrMalformedToken   = errors.New("jwt: malformed token")
	ErrInvalidPayload   = errors.New("jwt: invalid payload")
	ErrMissingExpiry    = errors.New("jwt: missing exp claim")
	ErrExpiredToken     = errors.New("jwt: token is expired")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
)
