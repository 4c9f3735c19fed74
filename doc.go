// Package identitykit is the credential core of a mobile identity client.
//
// It produces and protects what an OAuth authorization-code flow with PKCE
// and one-time-password authenticators needs:
//
//   - pkg/pkce generates code verifiers and S256 challenges.
//   - pkg/otp computes HOTP and TOTP codes for enrolled devices.
//   - pkg/vault encrypts access and refresh tokens at rest.
//   - pkg/jwt decides whether a stored token has expired.
//
// Client wires these together for a single signed-in user:
//
//	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
//	if err != nil {
//		return err
//	}
//	v, err := vault.New(keys, vault.NewMemoryStore())
//	if err != nil {
//		return err
//	}
//	client, err := identitykit.New(v)
//	if err != nil {
//		return err
//	}
//
//	pair, err := client.BeginLogin()
//	url := oauthCfg.AuthCodeURL(pair.State, pair.AuthCodeOptions()...)
//	// ... exchange the code, then:
//	err = client.SaveOAuth2Token(ctx, tok)
//
//	if client.NeedsRefresh(ctx) {
//		refresh, _ := client.RefreshToken(ctx)
//		// ... refresh grant
//	}
//
// Transport, UI and the OAuth network exchange are left to the caller.
package identitykit
