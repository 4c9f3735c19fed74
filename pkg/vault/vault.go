package vault

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/dmitrymomot/identitykit/pkg/codec"
	"github.com/dmitrymomot/identitykit/pkg/logger"
)

// Vault encrypts access and refresh tokens and persists them through a
// Store. Operations on the same kind are serialized; different kinds run
// in parallel.
type Vault struct {
	keys   KeyStore
	store  Store
	logger *slog.Logger
	prefix string

	locks [2]sync.Mutex // indexed by Kind
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithKeyPrefix namespaces every storage key, e.g. per account.
func WithKeyPrefix(prefix string) Option {
	return func(v *Vault) {
		v.prefix = prefix
	}
}

// New creates a Vault over the given key store and storage.
func New(keys KeyStore, store Store, opts ...Option) (*Vault, error) {
	if keys == nil || store == nil {
		return nil, ErrInvalidConfig
	}
	v := &Vault{
		keys:   keys,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Vault) acquire(ctx context.Context, kind Kind) (func(), error) {
	if !kind.valid() {
		return nil, ErrUnknownKind
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := &v.locks[kind]
	m.Lock()
	return m.Unlock, nil
}

func (v *Vault) valueKey(kind Kind) string { return v.prefix + kind.ValueKey() }
func (v *Vault) nonceKey(kind Kind) string { return v.prefix + kind.NonceKey() }

// Store seals plaintext under kind's alias and writes the nonce and
// ciphertext together. If any step fails the previously stored value is
// left untouched. Plaintext must be valid UTF-8.
func (v *Vault) Store(ctx context.Context, kind Kind, plaintext string) error {
	if !utf8.ValidString(plaintext) {
		return ErrInvalidToken
	}
	unlock, err := v.acquire(ctx, kind)
	if err != nil {
		return err
	}
	defer unlock()
	return v.seal(ctx, kind, plaintext)
}

func (v *Vault) seal(ctx context.Context, kind Kind, plaintext string) error {
	blob, err := v.keys.Seal(kind.Alias(), []byte(plaintext))
	if err != nil {
		return err
	}
	return v.write(ctx, kind, blob)
}

func (v *Vault) write(ctx context.Context, kind Kind, blob Blob) error {
	err := v.store.SetMany(ctx, map[string]string{
		v.valueKey(kind): codec.EncodeBase64(blob.Ciphertext),
		v.nonceKey(kind): codec.EncodeBase64(blob.Nonce),
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Open returns the stored plaintext for kind. It returns ErrNotFound when
// either field is missing and ErrDecryptionFailed when the stored data does
// not authenticate.
func (v *Vault) Open(ctx context.Context, kind Kind) (string, error) {
	unlock, err := v.acquire(ctx, kind)
	if err != nil {
		return "", err
	}
	defer unlock()
	return v.open(ctx, kind)
}

func (v *Vault) open(ctx context.Context, kind Kind) (string, error) {
	rawValue, okValue, err := v.store.Get(ctx, v.valueKey(kind))
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	rawNonce, okNonce, err := v.store.Get(ctx, v.nonceKey(kind))
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	if !okValue || !okNonce {
		return "", ErrNotFound
	}

	ciphertext, err := codec.DecodeBase64(rawValue)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	nonce, err := codec.DecodeBase64(rawNonce)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	plaintext, err := v.keys.Open(Blob{Alias: kind.Alias(), Nonce: nonce, Ciphertext: ciphertext})
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	s, err := codec.UTF8String(plaintext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return s, nil
}

// Load is Open for callers that only care about presence: any failure is
// logged and reported as absent.
func (v *Vault) Load(ctx context.Context, kind Kind) (string, bool) {
	s, err := v.Open(ctx, kind)
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, ErrNotFound):
		return "", false
	default:
		v.logger.WarnContext(ctx, "failed to load token",
			logger.Component("vault"),
			logger.Kind(kind.String()),
			logger.Error(err),
		)
		return "", false
	}
}

// Has reports whether both fields for kind are present. It does not
// decrypt.
func (v *Vault) Has(ctx context.Context, kind Kind) (bool, error) {
	unlock, err := v.acquire(ctx, kind)
	if err != nil {
		return false, err
	}
	defer unlock()

	for _, key := range []string{v.valueKey(kind), v.nonceKey(kind)} {
		_, ok, err := v.store.Get(ctx, key)
		if err != nil {
			return false, errors.Join(ErrStorage, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Clear deletes the stored fields for kind. The key is kept.
func (v *Vault) Clear(ctx context.Context, kind Kind) error {
	unlock, err := v.acquire(ctx, kind)
	if err != nil {
		return err
	}
	defer unlock()

	if err := v.store.Delete(ctx, v.valueKey(kind), v.nonceKey(kind)); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Purge clears every kind. Used on logout.
func (v *Vault) Purge(ctx context.Context) error {
	var errs []error
	for _, kind := range Kinds {
		if err := v.Clear(ctx, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rotate re-encrypts the stored token for kind under a fresh key. The new
// key replaces the old one only after the new ciphertext is written, so a
// failed rotation leaves the stored token readable. With a DerivedKeyStore
// the key derives to the same bytes and only the nonce changes. The other
// kind is unaffected.
func (v *Vault) Rotate(ctx context.Context, kind Kind) error {
	unlock, err := v.acquire(ctx, kind)
	if err != nil {
		return err
	}
	defer unlock()

	plaintext, err := v.open(ctx, kind)
	if errors.Is(err, ErrNotFound) {
		return v.keys.Forget(kind.Alias())
	}
	if err != nil {
		return err
	}

	blob, commit, err := v.keys.Rekey(kind.Alias(), []byte(plaintext))
	if err != nil {
		return err
	}
	if err := v.write(ctx, kind, blob); err != nil {
		return err
	}
	commit()

	v.logger.InfoContext(ctx, "token key rotated",
		logger.Component("vault"),
		logger.Kind(kind.String()),
		logger.Alias(kind.Alias()),
	)
	return nil
}
