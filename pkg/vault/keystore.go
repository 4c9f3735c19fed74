package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// Blob is one sealed secret. Alias names the key that sealed it; the key
// itself never leaves the KeyStore.
type Blob struct {
	Alias      string
	Nonce      []byte
	Ciphertext []byte
}

// KeyStore owns alias-addressed symmetric keys and performs authenticated
// encryption with them. The alias is bound to every ciphertext as
// additional data, so a blob cannot be opened under another alias.
type KeyStore interface {
	// Seal encrypts plaintext with the key for alias, creating the key on
	// first use.
	Seal(alias string, plaintext []byte) (Blob, error)
	// Open authenticates and decrypts blob. Any failure yields an error and
	// no plaintext.
	Open(blob Blob) ([]byte, error)
	// Forget drops the key for alias.
	Forget(alias string) error
	// Rekey seals plaintext under a fresh key for alias. Seal and Open keep
	// using the current key until commit is called.
	Rekey(alias string, plaintext []byte) (blob Blob, commit func(), err error)
}

// keyHandle is created once per alias. The AEAD keeps its own copy of the
// key schedule; the raw key bytes are zeroed after setup.
type keyHandle struct {
	once sync.Once
	aead cipher.AEAD
	err  error
}

// keyring is the shared implementation behind MemoryKeyStore and
// DerivedKeyStore. source produces key bytes for an alias.
type keyring struct {
	cipher     Cipher
	source     func(alias string) ([]byte, error)
	openCreate bool // whether Open may create a missing key
	random     io.Reader

	mu      sync.Mutex
	handles map[string]*keyHandle
}

func newKeyring(c Cipher, source func(string) ([]byte, error), openCreate bool) *keyring {
	return &keyring{
		cipher:     c,
		source:     source,
		openCreate: openCreate,
		random:     rand.Reader,
		handles:    make(map[string]*keyHandle),
	}
}

func (r *keyring) handle(alias string, create bool) (cipher.AEAD, error) {
	r.mu.Lock()
	h, ok := r.handles[alias]
	if !ok {
		if !create {
			r.mu.Unlock()
			return nil, ErrKeyNotFound
		}
		h = &keyHandle{}
		r.handles[alias] = h
	}
	r.mu.Unlock()

	r.init(h, alias)
	if h.err != nil {
		// Let the next call retry instead of caching the failure.
		r.mu.Lock()
		if r.handles[alias] == h {
			delete(r.handles, alias)
		}
		r.mu.Unlock()
	}
	return h.aead, h.err
}

func (r *keyring) init(h *keyHandle, alias string) {
	h.once.Do(func() {
		key, err := r.source(alias)
		if err != nil {
			h.err = err
			return
		}
		defer clear(key)
		h.aead, h.err = r.cipher.newAEAD(key)
	})
}

func (r *keyring) Seal(alias string, plaintext []byte) (Blob, error) {
	if alias == "" {
		return Blob{}, errors.Join(ErrEncryptionFailed, ErrKeyNotFound)
	}
	aead, err := r.handle(alias, true)
	if err != nil {
		return Blob{}, errors.Join(ErrEncryptionFailed, err)
	}
	return r.seal(aead, alias, plaintext)
}

func (r *keyring) Rekey(alias string, plaintext []byte) (Blob, func(), error) {
	if alias == "" {
		return Blob{}, nil, errors.Join(ErrEncryptionFailed, ErrKeyNotFound)
	}
	h := &keyHandle{}
	r.init(h, alias)
	if h.err != nil {
		return Blob{}, nil, errors.Join(ErrEncryptionFailed, h.err)
	}
	blob, err := r.seal(h.aead, alias, plaintext)
	if err != nil {
		return Blob{}, nil, err
	}
	commit := func() {
		r.mu.Lock()
		r.handles[alias] = h
		r.mu.Unlock()
	}
	return blob, commit, nil
}

func (r *keyring) seal(aead cipher.AEAD, alias string, plaintext []byte) (Blob, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(r.random, nonce); err != nil {
		return Blob{}, errors.Join(ErrEncryptionFailed, err)
	}
	return Blob{
		Alias:      alias,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, []byte(alias)),
	}, nil
}

func (r *keyring) Open(blob Blob) ([]byte, error) {
	aead, err := r.handle(blob.Alias, r.openCreate)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	// cipher.AEAD panics on a nonce of the wrong length.
	if len(blob.Nonce) != aead.NonceSize() || len(blob.Ciphertext) < aead.Overhead() {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := aead.Open(nil, blob.Nonce, blob.Ciphertext, []byte(blob.Alias))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func (r *keyring) Forget(alias string) error {
	r.mu.Lock()
	delete(r.handles, alias)
	r.mu.Unlock()
	return nil
}

// MemoryKeyStore keeps random per-alias keys in process memory. Keys are
// created lazily on the first Seal and lost when the process exits, which
// makes previously sealed blobs unreadable.
type MemoryKeyStore struct {
	*keyring
}

// NewMemoryKeyStore returns an empty in-memory key store.
func NewMemoryKeyStore(c Cipher) (*MemoryKeyStore, error) {
	if _, err := ParseCipher(string(c)); err != nil {
		return nil, err
	}
	if c == "" {
		c = CipherAESGCM
	}
	ks := &MemoryKeyStore{}
	ks.keyring = newKeyring(c, func(string) ([]byte, error) {
		key := make([]byte, KeySize)
		if _, err := io.ReadFull(ks.random, key); err != nil {
			return nil, errors.Join(ErrKeyGenerationFailed, err)
		}
		return key, nil
	}, false)
	return ks, nil
}

// DerivedKeyStore derives each alias key from a master key with
// HKDF-SHA256, so keys are stable across restarts without being persisted.
// Forget only drops the cached key; the same alias derives the same key
// again.
type DerivedKeyStore struct {
	*keyring
}

const hkdfInfoPrefix = "identitykit-vault-v1:"

// NewDerivedKeyStore returns a key store backed by a 32-byte master key.
// The master key is copied.
func NewDerivedKeyStore(masterKey []byte, c Cipher) (*DerivedKeyStore, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	if _, err := ParseCipher(string(c)); err != nil {
		return nil, err
	}
	if c == "" {
		c = CipherAESGCM
	}

	master := append([]byte(nil), masterKey...)
	ks := &DerivedKeyStore{}
	ks.keyring = newKeyring(c, func(alias string) ([]byte, error) {
		key := make([]byte, KeySize)
		r := hkdf.New(sha256.New, master, nil, []byte(hkdfInfoPrefix+string(c)+":"+alias))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, errors.Join(ErrKeyDerivationFailed, err)
		}
		return key, nil
	}, true)
	return ks, nil
}

// GenerateMasterKey returns 32 random bytes for NewDerivedKeyStore.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}
