// Package jwt evaluates the expiry of JSON Web Tokens held by a client.
//
// The Evaluator decodes the payload segment of a compact JWT, reads the exp
// claim and compares it with the current time in milliseconds. A token is
// valid while now <= exp*1000. Malformed tokens, payloads that are not JSON
// objects, and tokens without a numeric exp are all reported as invalid; the
// reason is logged and also available from Claims.
//
//	eval := jwt.New(jwt.WithLogger(log))
//	if !eval.IsTokenValid(accessToken) {
//		// refresh
//	}
//
// Signatures are not checked by default because the client usually does not
// hold the issuer's key. WithVerifier enables verification through
// github.com/golang-jwt/jwt/v5; a token that fails verification is invalid.
//
//	eval := jwt.New(jwt.WithVerifier(func(*gojwt.Token) (any, error) {
//		return publicKey, nil
//	}, "RS256"))
package jwt
