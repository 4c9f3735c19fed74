package pkce_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/identitykit/pkg/pkce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verifier string
		want     string
	}{
		{
			name:     "RFC 7636 appendix B",
			verifier: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			want:     "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		},
		{
			name:     "all zero entropy",
			verifier: strings.Repeat("A", 43),
			want:     "DwBzhbb51LfusnSGBa_hqYSgo7-j8BTQnip4TOnlzRo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := pkce.ChallengeFor(tt.verifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, oauth2.S256ChallengeFromVerifier(tt.verifier), got)
		})
	}
}

func TestChallengeFor_NonASCII(t *testing.T) {
	t.Parallel()

	got, err := pkce.ChallengeFor("verifier-with-ünïcode")
	assert.ErrorIs(t, err, pkce.ErrInvalidVerifier)
	assert.Empty(t, got)
}

func TestGenerateVerifier(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		v, err := pkce.GenerateVerifier()
		require.NoError(t, err)
		require.Len(t, v, 43)
		require.NoError(t, pkce.ValidateVerifier(v))
		require.NotContains(t, v, "=")

		_, dup := seen[v]
		require.False(t, dup, "duplicate verifier %q", v)
		seen[v] = struct{}{}
	}
}

func TestGenerator_WithRandom(t *testing.T) {
	t.Parallel()

	t.Run("deterministic source", func(t *testing.T) {
		t.Parallel()
		entropy := make([]byte, pkce.VerifierEntropy)
		for i := range entropy {
			entropy[i] = byte(i)
		}
		g := pkce.NewGenerator(pkce.WithRandom(bytes.NewReader(entropy)))

		v, err := g.GenerateVerifier()
		require.NoError(t, err)
		assert.Equal(t, "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8", v)
	})

	t.Run("short source", func(t *testing.T) {
		t.Parallel()
		g := pkce.NewGenerator(pkce.WithRandom(bytes.NewReader(make([]byte, 10))))

		v, err := g.GenerateVerifier()
		assert.ErrorIs(t, err, pkce.ErrRandomUnavailable)
		assert.Empty(t, v)

		_, err = g.New()
		assert.ErrorIs(t, err, pkce.ErrRandomUnavailable)
	})

	t.Run("nil source keeps crypto rand", func(t *testing.T) {
		t.Parallel()
		g := pkce.NewGenerator(pkce.WithRandom(nil))
		v, err := g.GenerateVerifier()
		require.NoError(t, err)
		assert.Len(t, v, 43)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	pair, err := pkce.New()
	require.NoError(t, err)

	assert.Len(t, pair.Verifier, 43)
	assert.Equal(t, pkce.MethodS256, pair.Method)
	assert.True(t, pkce.Verify(pair.Verifier, pair.Challenge))

	_, err = uuid.Parse(pair.State)
	assert.NoError(t, err)

	other, err := pkce.New()
	require.NoError(t, err)
	assert.NotEqual(t, pair.Verifier, other.Verifier)
	assert.NotEqual(t, pair.State, other.State)
}

func TestNew_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 32
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair, err := pkce.New()
			assert.NoError(t, err)
			mu.Lock()
			seen[pair.Verifier] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.True(t, pkce.Verify(verifier, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"))
	assert.False(t, pkce.Verify(verifier, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM="))
	assert.False(t, pkce.Verify(verifier, verifier))
	assert.False(t, pkce.Verify("ünïcode", "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"))
}

func TestValidateVerifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verifier string
		wantErr  bool
	}{
		{name: "minimum length", verifier: strings.Repeat("a", 43)},
		{name: "maximum length", verifier: strings.Repeat("Z", 128)},
		{name: "unreserved punctuation", verifier: strings.Repeat("-._~", 11)},
		{name: "too short", verifier: strings.Repeat("a", 42), wantErr: true},
		{name: "too long", verifier: strings.Repeat("a", 129), wantErr: true},
		{name: "padding", verifier: strings.Repeat("a", 42) + "=", wantErr: true},
		{name: "slash", verifier: strings.Repeat("a", 42) + "/", wantErr: true},
		{name: "empty", verifier: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := pkce.ValidateVerifier(tt.verifier)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkce.ErrInvalidVerifier)
				return
			}
			assert.NoError(t, err)
		})
	}
}
