// Package vault stores access and refresh tokens encrypted at rest.
//
// A Vault pairs a KeyStore, which owns alias-addressed symmetric keys and
// performs authenticated encryption, with a Store, the external key-value
// storage that receives only base64 nonces and ciphertexts. Each token Kind
// has its own alias and its own pair of storage keys:
//
//	access_token, access_token_nonce     sealed with "access_token_key"
//	refresh_token, refresh_token_nonce   sealed with "refresh_token_key"
//
// The alias is bound to every ciphertext as additional authenticated data,
// so swapping the stored fields of one kind into the other fails to decrypt.
//
// Two key stores are provided. MemoryKeyStore creates a random key per alias
// on first use and keeps it for the life of the process. DerivedKeyStore
// derives per-alias keys from a master key with HKDF-SHA256. Both support
// AES-256-GCM and XChaCha20-Poly1305.
//
//	keys, err := vault.NewDerivedKeyStore(masterKey, vault.CipherAESGCM)
//	if err != nil {
//		return err
//	}
//	v, err := vault.New(keys, redisStore, vault.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	if err := v.Store(ctx, vault.Access, accessToken); err != nil {
//		return err
//	}
//	token, ok := v.Load(ctx, vault.Access)
//
// Open reports why a token is unavailable (ErrNotFound, ErrDecryptionFailed);
// Load folds every failure into "absent" and logs it. Tampered or foreign
// data never yields plaintext.
//
// Rotate reseals a stored token under a fresh key. The new key replaces the
// old one only after the new ciphertext is written.
//
// Configuration is read from VAULT_MASTER_KEY, VAULT_CIPHER and
// VAULT_KEY_PREFIX by LoadConfig.
package vault
