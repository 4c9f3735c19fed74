package pkce

import "golang.org/x/oauth2"

// AuthCodeOptions returns the parameters to add to the authorization URL.
//
//	url := cfg.AuthCodeURL(pair.State, pair.AuthCodeOptions()...)
func (p Pair) AuthCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", p.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", p.Method),
	}
}

// ExchangeOptions returns the parameters for the token exchange.
//
//	tok, err := cfg.Exchange(ctx, code, pair.ExchangeOptions()...)
func (p Pair) ExchangeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.VerifierOption(p.Verifier)}
}
