package pkce

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identitykit/pkg/codec"
)

const (
	// MethodS256 is the only challenge method produced by this package.
	MethodS256 = "S256"

	// VerifierEntropy is the number of random bytes behind each verifier.
	// 32 bytes encode to a 43 character verifier.
	VerifierEntropy = 32

	MinVerifierLength = 43
	MaxVerifierLength = 128
)

// Pair is everything a client keeps for one authorization request.
type Pair struct {
	Verifier  string `json:"code_verifier"`
	Challenge string `json:"code_challenge"`
	Method    string `json:"code_challenge_method"`
	State     string `json:"state"`
}

// Generator produces code verifiers from a random source.
type Generator struct {
	random io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom replaces the random source. Intended for tests.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

// NewGenerator returns a Generator reading from crypto/rand unless
// overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = NewGenerator()

// GenerateVerifier returns a fresh verifier: 32 random bytes encoded as
// unpadded base64url.
func (g *Generator) GenerateVerifier() (string, error) {
	buf := make([]byte, VerifierEntropy)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", errors.Join(ErrRandomUnavailable, err)
	}
	return codec.EncodeBase64URL(buf), nil
}

// New generates a verifier together with its S256 challenge and a random
// state value for the authorization request.
func (g *Generator) New() (Pair, error) {
	verifier, err := g.GenerateVerifier()
	if err != nil {
		return Pair{}, err
	}
	challenge, err := ChallengeFor(verifier)
	if err != nil {
		return Pair{}, err
	}
	state, err := uuid.NewRandom()
	if err != nil {
		return Pair{}, errors.Join(ErrRandomUnavailable, err)
	}
	return Pair{
		Verifier:  verifier,
		Challenge: challenge,
		Method:    MethodS256,
		State:     state.String(),
	}, nil
}

// GenerateVerifier uses the default crypto/rand backed Generator.
func GenerateVerifier() (string, error) {
	return defaultGenerator.GenerateVerifier()
}

// New uses the default crypto/rand backed Generator.
func New() (Pair, error) {
	return defaultGenerator.New()
}

// ChallengeFor derives the S256 challenge: base64url(sha256(ascii(verifier)))
// without padding. It fails rather than fall back to the plain method.
func ChallengeFor(verifier string) (string, error) {
	raw, err := codec.ASCIIBytes(verifier)
	if err != nil {
		return "", errors.Join(ErrInvalidVerifier, err)
	}
	sum, err := codec.SHA256(raw)
	if err != nil {
		return "", err
	}
	return codec.EncodeBase64URL(sum), nil
}

// Verify reports whether challenge was derived from verifier.
func Verify(verifier, challenge string) bool {
	want, err := ChallengeFor(verifier)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(challenge)) == 1
}

// ValidateVerifier checks the RFC 7636 shape of a verifier: 43 to 128
// characters from the unreserved set [A-Za-z0-9-._~].
func ValidateVerifier(verifier string) error {
	if len(verifier) < MinVerifierLength || len(verifier) > MaxVerifierLength {
		return ErrInvalidVerifier
	}
	for i := 0; i < len(verifier); i++ {
		if !unreserved(verifier[i]) {
			return ErrInvalidVerifier
		}
	}
	return nil
}

func unreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
