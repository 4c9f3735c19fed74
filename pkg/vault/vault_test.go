package vault_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrymomot/identitykit/pkg/logger"
	"github.com/dmitrymomot/identitykit/pkg/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T, opts ...vault.Option) (*vault.Vault, *vault.MemoryStore) {
	t.Helper()
	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)
	store := vault.NewMemoryStore()
	opts = append([]vault.Option{vault.WithLogger(logger.Discard())}, opts...)
	v, err := vault.New(keys, store, opts...)
	require.NoError(t, err)
	return v, store
}

func mustGet(t *testing.T, store vault.Store, key string) string {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "missing %s", key)
	return v
}

// failingStore reads through to a MemoryStore but refuses writes.
type failingStore struct {
	*vault.MemoryStore
	fail bool
}

func (s *failingStore) SetMany(ctx context.Context, values map[string]string) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.SetMany(ctx, values)
}

func TestVault_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))

	got, ok := v.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "tok123", got)

	got, err := v.Open(ctx, vault.Access)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got)

	// Only base64 nonce and ciphertext reach the store.
	assert.Equal(t, 2, store.Len())
	nonce, err := base64.StdEncoding.DecodeString(mustGet(t, store, "access_token_nonce"))
	require.NoError(t, err)
	assert.Len(t, nonce, 12)
	assert.NotContains(t, mustGet(t, store, "access_token"), "dG9rMTIz")
}

func TestVault_Overwrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, _ := newVault(t)

	require.NoError(t, v.Store(ctx, vault.Access, "first"))
	require.NoError(t, v.Store(ctx, vault.Access, "second"))

	got, ok := v.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestVault_EmptyAndUnicodeTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, _ := newVault(t)

	for _, token := range []string{"", "тöкен-🔑", "a.b.c"} {
		require.NoError(t, v.Store(ctx, vault.Refresh, token))
		got, err := v.Open(ctx, vault.Refresh)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	}
}

func TestVault_Absent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)

	got, ok := v.Load(ctx, vault.Access)
	assert.False(t, ok)
	assert.Empty(t, got)

	_, err := v.Open(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrNotFound)

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))
	require.NoError(t, store.Delete(ctx, "access_token_nonce"))

	_, err = v.Open(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrNotFound)
	_, ok = v.Load(ctx, vault.Access)
	assert.False(t, ok)
}

func TestVault_TamperFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{name: "ciphertext", key: "access_token"},
		{name: "nonce", key: "access_token_nonce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			v, store := newVault(t)
			require.NoError(t, v.Store(ctx, vault.Access, "tok123"))

			raw, err := base64.StdEncoding.DecodeString(mustGet(t, store, tt.key))
			require.NoError(t, err)
			raw[len(raw)/2] ^= 0x01
			require.NoError(t, store.SetMany(ctx, map[string]string{tt.key: base64.StdEncoding.EncodeToString(raw)}))

			got, ok := v.Load(ctx, vault.Access)
			assert.False(t, ok)
			assert.Empty(t, got)

			_, err = v.Open(ctx, vault.Access)
			assert.ErrorIs(t, err, vault.ErrDecryptionFailed)
		})
	}
}

func TestVault_CorruptEncoding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)
	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))

	require.NoError(t, store.SetMany(ctx, map[string]string{"access_token": "%%% not base64 %%%"}))
	_, err := v.Open(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrDecryptionFailed)
}

func TestVault_Isolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, _ := newVault(t)

	require.NoError(t, v.Store(ctx, vault.Access, "access-1"))
	require.NoError(t, v.Store(ctx, vault.Refresh, "refresh-1"))
	require.NoError(t, v.Store(ctx, vault.Refresh, "refresh-2"))

	access, ok := v.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "access-1", access)

	require.NoError(t, v.Clear(ctx, vault.Access))
	refresh, ok := v.Load(ctx, vault.Refresh)
	require.True(t, ok)
	assert.Equal(t, "refresh-2", refresh)
}

func TestVault_CrossKindSwapFails(t *testing.T) {
	t.Parallel()

	for _, c := range []vault.Cipher{vault.CipherAESGCM, vault.CipherXChaCha20Poly1305} {
		t.Run(string(c), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			// A derived store proves the AAD binding, not just distinct keys.
			keys, err := vault.NewDerivedKeyStore(testMasterKey, c)
			require.NoError(t, err)
			store := vault.NewMemoryStore()
			v, err := vault.New(keys, store, vault.WithLogger(logger.Discard()))
			require.NoError(t, err)

			require.NoError(t, v.Store(ctx, vault.Access, "access-1"))
			require.NoError(t, v.Store(ctx, vault.Refresh, "refresh-1"))

			require.NoError(t, store.SetMany(ctx, map[string]string{
				"refresh_token":       mustGet(t, store, "access_token"),
				"refresh_token_nonce": mustGet(t, store, "access_token_nonce"),
			}))

			_, err = v.Open(ctx, vault.Refresh)
			assert.ErrorIs(t, err, vault.ErrDecryptionFailed)
		})
	}
}

func TestVault_FailedStoreKeepsPreviousValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)
	store := &failingStore{MemoryStore: vault.NewMemoryStore()}
	v, err := vault.New(keys, store, vault.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))

	store.fail = true
	err = v.Store(ctx, vault.Access, "tok456")
	assert.ErrorIs(t, err, vault.ErrStorage)

	got, ok := v.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "tok123", got)
}

func TestVault_HasClearPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)

	has, err := v.Has(ctx, vault.Access)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, v.Store(ctx, vault.Access, "a"))
	require.NoError(t, v.Store(ctx, vault.Refresh, "r"))

	has, err = v.Has(ctx, vault.Access)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, v.Clear(ctx, vault.Access))
	has, err = v.Has(ctx, vault.Access)
	require.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, 2, store.Len())

	require.NoError(t, v.Purge(ctx))
	assert.Equal(t, 0, store.Len())
	_, ok := v.Load(ctx, vault.Refresh)
	assert.False(t, ok)

	// Clearing an empty slot is fine.
	require.NoError(t, v.Clear(ctx, vault.Refresh))
}

func TestVault_KeyPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)
	store := vault.NewMemoryStore()

	alice, err := vault.New(keys, store, vault.WithKeyPrefix("alice:"), vault.WithLogger(logger.Discard()))
	require.NoError(t, err)
	bob, err := vault.New(keys, store, vault.WithKeyPrefix("bob:"), vault.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, alice.Store(ctx, vault.Access, "alice-token"))
	require.NoError(t, bob.Store(ctx, vault.Access, "bob-token"))

	mustGet(t, store, "alice:access_token")
	mustGet(t, store, "bob:access_token_nonce")

	got, ok := alice.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "alice-token", got)
}

func TestVault_Rotate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))
	require.NoError(t, v.Store(ctx, vault.Refresh, "refresh-1"))
	before := mustGet(t, store, "access_token")
	refreshBefore := mustGet(t, store, "refresh_token")

	require.NoError(t, v.Rotate(ctx, vault.Access))

	assert.NotEqual(t, before, mustGet(t, store, "access_token"))
	assert.Equal(t, refreshBefore, mustGet(t, store, "refresh_token"))

	got, ok := v.Load(ctx, vault.Access)
	require.True(t, ok)
	assert.Equal(t, "tok123", got)

	got, ok = v.Load(ctx, vault.Refresh)
	require.True(t, ok)
	assert.Equal(t, "refresh-1", got)

	// Rotating an empty slot only replaces the key.
	require.NoError(t, v.Clear(ctx, vault.Access))
	require.NoError(t, v.Rotate(ctx, vault.Access))
	_, ok = v.Load(ctx, vault.Access)
	assert.False(t, ok)
}

func TestVault_FailedRotateKeepsToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)
	store := &failingStore{MemoryStore: vault.NewMemoryStore()}
	v, err := vault.New(keys, store, vault.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))
	before := mustGet(t, store, "access_token")

	store.fail = true
	err = v.Rotate(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrStorage)
	store.fail = false

	assert.Equal(t, before, mustGet(t, store, "access_token"))
	got, err := v.Open(ctx, vault.Access)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got)

	// A later rotation still succeeds.
	require.NoError(t, v.Rotate(ctx, vault.Access))
	got, err = v.Open(ctx, vault.Access)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got)
}

func TestVault_RejectsInvalidUTF8(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, store := newVault(t)

	err := v.Store(ctx, vault.Access, "tok\xff123")
	assert.ErrorIs(t, err, vault.ErrInvalidToken)
	assert.Equal(t, 0, store.Len())

	has, err := v.Has(ctx, vault.Access)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestVault_InvalidArguments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)

	_, err = vault.New(nil, vault.NewMemoryStore())
	assert.ErrorIs(t, err, vault.ErrInvalidConfig)
	_, err = vault.New(keys, nil)
	assert.ErrorIs(t, err, vault.ErrInvalidConfig)

	v, _ := newVault(t)
	assert.ErrorIs(t, v.Store(ctx, vault.Kind(7), "x"), vault.ErrUnknownKind)
	_, err = v.Open(ctx, vault.Kind(7))
	assert.ErrorIs(t, err, vault.ErrUnknownKind)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, v.Store(canceled, vault.Access, "x"), context.Canceled)
}

func TestVault_LoadLogsFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSONFormatter())
	v, store := newVault(t, vault.WithLogger(log))

	_, ok := v.Load(ctx, vault.Access)
	assert.False(t, ok)
	assert.Empty(t, buf.String(), "absent token is not a failure")

	require.NoError(t, v.Store(ctx, vault.Access, "tok123"))
	require.NoError(t, store.SetMany(ctx, map[string]string{"access_token": base64.StdEncoding.EncodeToString([]byte("garbage-garbage-garbage"))}))

	_, ok = v.Load(ctx, vault.Access)
	assert.False(t, ok)
	out := buf.String()
	assert.Contains(t, out, "failed to load token")
	assert.Contains(t, out, `"token_kind":"access"`)
	assert.NotContains(t, out, "tok123")
}

func TestVault_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, _ := newVault(t)

	var wg sync.WaitGroup
	for i := range 50 {
		for _, kind := range vault.Kinds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				token := fmt.Sprintf("%s-%d", kind, i)
				assert.NoError(t, v.Store(ctx, kind, token))
				got, ok := v.Load(ctx, kind)
				assert.True(t, ok)
				assert.Contains(t, got, kind.String()+"-")
			}()
		}
	}
	wg.Wait()

	for _, kind := range vault.Kinds {
		_, err := v.Open(ctx, kind)
		assert.NoError(t, err)
	}
}

func TestVault_StorageErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	down := errors.New("connection refused")

	keys, err := vault.NewMemoryKeyStore(vault.CipherAESGCM)
	require.NoError(t, err)

	store := &MockStore{}
	store.On("Get", mock.Anything, "access_token").Return("", false, down)
	store.On("Delete", mock.Anything, []string{"access_token", "access_token_nonce"}).Return(down)
	store.On("Delete", mock.Anything, []string{"refresh_token", "refresh_token_nonce"}).Return(nil)
	store.On("SetMany", mock.Anything, mock.MatchedBy(func(values map[string]string) bool {
		_, ok := values["refresh_token"]
		return ok && len(values) == 2
	})).Return(nil)

	v, err := vault.New(keys, store, vault.WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = v.Open(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrStorage)
	assert.ErrorIs(t, err, down)

	_, ok := v.Load(ctx, vault.Access)
	assert.False(t, ok)

	_, err = v.Has(ctx, vault.Access)
	assert.ErrorIs(t, err, vault.ErrStorage)

	require.NoError(t, v.Store(ctx, vault.Refresh, "refresh-1"))

	err = v.Purge(ctx)
	assert.ErrorIs(t, err, vault.ErrStorage)
	assert.ErrorIs(t, err, down)

	store.AssertExpectations(t)
}
