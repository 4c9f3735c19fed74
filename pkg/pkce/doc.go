// Package pkce generates Proof Key for Code Exchange (RFC 7636) material for
// OAuth authorization code flows run by public clients.
//
// Only the S256 method is produced. A verifier is 32 bytes from crypto/rand
// encoded as unpadded base64url (43 characters); the challenge is the
// unpadded base64url SHA-256 digest of the verifier's ASCII bytes.
//
//	pair, err := pkce.New()
//	if err != nil {
//		return err
//	}
//	url := oauthCfg.AuthCodeURL(pair.State, pair.AuthCodeOptions()...)
//	// ... after the redirect:
//	tok, err := oauthCfg.Exchange(ctx, code, pair.ExchangeOptions()...)
//
// Verifiers are never derived from anything but the random source, and
// ChallengeFor fails instead of degrading to the plain method.
package pkce
