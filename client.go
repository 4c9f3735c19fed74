package identitykit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/identitykit/pkg/clock"
	"github.com/dmitrymomot/identitykit/pkg/jwt"
	"github.com/dmitrymomot/identitykit/pkg/logger"
	"github.com/dmitrymomot/identitykit/pkg/otp"
	"github.com/dmitrymomot/identitykit/pkg/pkce"
	"github.com/dmitrymomot/identitykit/pkg/vault"
)

// DefaultRefreshMargin is how long before expiry NeedsRefresh starts
// reporting true.
const DefaultRefreshMargin = 30 * time.Second

var (
	ErrNilVault       = errors.New("identitykit: vault is required")
	ErrNoAccessToken  = errors.New("identitykit: access token is required")
	ErrNilOAuth2Token = errors.New("identitykit: nil oauth2 token")
)

// Client ties the credential primitives together for one signed-in user:
// PKCE material for login, encrypted token storage, expiry checks and OTP
// codes for enrolled devices.
type Client struct {
	vault         *vault.Vault
	pkce          *pkce.Generator
	tokens        *jwt.Evaluator
	clock         clock.Clock
	logger        *slog.Logger
	refreshMargin time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithClock sets the time source for token expiry and OTP codes.
func WithClock(c clock.Clock) Option {
	return func(cl *Client) {
		if c != nil {
			cl.clock = c
		}
	}
}

// WithLogger sets the logger shared with the token evaluator.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithPKCEGenerator replaces the crypto/rand backed generator.
func WithPKCEGenerator(g *pkce.Generator) Option {
	return func(cl *Client) {
		if g != nil {
			cl.pkce = g
		}
	}
}

// WithEvaluator replaces the token evaluator. WithClock and WithLogger do
// not apply to an evaluator passed here.
func WithEvaluator(e *jwt.Evaluator) Option {
	return func(cl *Client) {
		if e != nil {
			cl.tokens = e
		}
	}
}

// WithRefreshMargin sets how early NeedsRefresh asks for a new token.
func WithRefreshMargin(d time.Duration) Option {
	return func(cl *Client) {
		if d >= 0 {
			cl.refreshMargin = d
		}
	}
}

// New creates a Client storing tokens in v.
func New(v *vault.Vault, opts ...Option) (*Client, error) {
	if v == nil {
		return nil, ErrNilVault
	}
	c := &Client{
		vault:         v,
		clock:         clock.System(),
		logger:        slog.Default(),
		refreshMargin: DefaultRefreshMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pkce == nil {
		c.pkce = pkce.NewGenerator()
	}
	if c.tokens == nil {
		c.tokens = jwt.New(jwt.WithClock(c.clock), jwt.WithLogger(c.logger))
	}
	c.logger = c.logger.With(logger.Component("identitykit"))
	return c, nil
}

// BeginLogin returns fresh PKCE material for an authorization request.
func (c *Client) BeginLogin() (pkce.Pair, error) {
	return c.pkce.New()
}

// SaveTokens encrypts and stores the tokens from a token response. An empty
// refresh token keeps the stored one, since refresh grants often omit it.
//
// The two writes are not atomic. The refresh token is written first: if it
// fails nothing changes, and if the access write fails the client still
// holds the newest refresh token and can fetch a new access token with it.
func (c *Client) SaveTokens(ctx context.Context, access, refresh string) error {
	if access == "" {
		return ErrNoAccessToken
	}
	if refresh != "" {
		if err := c.vault.Store(ctx, vault.Refresh, refresh); err != nil {
			return err
		}
	}
	return c.vault.Store(ctx, vault.Access, access)
}

// SaveOAuth2Token is SaveTokens for an x/oauth2 token response.
func (c *Client) SaveOAuth2Token(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return ErrNilOAuth2Token
	}
	return c.SaveTokens(ctx, tok.AccessToken, tok.RefreshToken)
}

// AccessToken returns the stored access token if it exists and has not
// expired.
func (c *Client) AccessToken(ctx context.Context) (string, bool) {
	token, ok := c.vault.Load(ctx, vault.Access)
	if !ok || !c.tokens.IsTokenValid(token) {
		return "", false
	}
	return token, true
}

// RefreshToken returns the stored refresh token. Refresh tokens are often
// opaque, so no expiry check is made.
func (c *Client) RefreshToken(ctx context.Context) (string, bool) {
	return c.vault.Load(ctx, vault.Refresh)
}

// OAuth2Token rebuilds an oauth2.Token from storage, suitable for an
// oauth2.TokenSource. The expiry comes from the access token's exp claim.
func (c *Client) OAuth2Token(ctx context.Context) (*oauth2.Token, bool) {
	access, ok := c.vault.Load(ctx, vault.Access)
	if !ok {
		return nil, false
	}
	claims, err := jwt.Decode(access)
	if err != nil {
		c.logger.InfoContext(ctx, "stored access token is not a jwt", logger.Error(err))
		return nil, false
	}
	refresh, _ := c.vault.Load(ctx, vault.Refresh)
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
		Expiry:       claims.ExpiresAt,
	}, true
}

// NeedsRefresh reports whether the access token is missing, invalid, or
// expires within the refresh margin.
func (c *Client) NeedsRefresh(ctx context.Context) bool {
	token, ok := c.vault.Load(ctx, vault.Access)
	if !ok {
		return true
	}
	return c.tokens.ExpiresWithin(token, c.refreshMargin)
}

// Logout removes both tokens.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.vault.Purge(ctx); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "tokens purged", logger.Event("logout"))
	return nil
}

// OTPCode returns the current one-time code for an enrolled device.
func (c *Client) OTPCode(e otp.Enrollment) (string, error) {
	code, err := e.Code(c.clock)
	if err != nil {
		c.enrollmentRejected(e, err)
		return "", err
	}
	return code, nil
}

// VerifyOTP checks code against the enrollment with skew windows either
// side of the current one.
func (c *Client) VerifyOTP(e otp.Enrollment, code string, skew int) (bool, error) {
	ok, err := e.Verify(code, c.clock, skew)
	if err != nil {
		c.enrollmentRejected(e, err)
		return false, err
	}
	return ok, nil
}

func (c *Client) enrollmentRejected(e otp.Enrollment, err error) {
	alg, _ := otp.AlgorithmFromCode(e.AlgorithmCode)
	c.logger.Warn("otp enrollment rejected",
		logger.Algorithm(alg.String()),
		slog.Int("algorithm_code", e.AlgorithmCode),
		logger.Error(err),
	)
}
