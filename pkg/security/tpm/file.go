package tpm

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

func init() {
	RegisterBackend("tpm-file", func(location string) (Backend, error) {
		return newFileBackend(location), nil
	})
}

// fileBackend stores each private key as a single file named after the
// SHA-256 hash of the key's wire-encoded name, holding one type-tag
// byte followed by the key's PKCS#8-encrypted encoding. HMAC keys have
// no PKCS#8 form, so their raw secret is wrapped in the same
// PBKDF2+AES-GCM envelope SM2's PKCS#8 fallback uses (keys.EncryptSecret).
//
// Keys are encrypted under an explicitly unlocked password (Unlock) or,
// absent one, under a random master key generated on first use and
// persisted at 0600 alongside the store (masterKeyFile), so the store
// is always encrypted at rest even for callers that never unlock it.
type fileBackend struct {
	dir string

	mu       sync.Mutex
	password []byte
}

func newFileBackend(dir string) *fileBackend { return &fileBackend{dir: dir} }

func (b *fileBackend) fileName(keyName enc.Name) string {
	h := sha256.Sum256(keyName.Bytes())
	return path.Join(b.dir, hex.EncodeToString(h[:])+".privkey")
}

func (b *fileBackend) masterKeyFile() string { return path.Join(b.dir, ".masterkey") }

// Unlock sets the password used to encrypt and decrypt key files,
// overriding the auto-generated master key. Implements PasswordUnlocker.
func (b *fileBackend) Unlock(password []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.password = append([]byte(nil), password...)
	return nil
}

// masterPassword returns the password key files should be encrypted
// under: an explicitly unlocked one if set, otherwise a persisted
// random key, generated the first time the store is used.
func (b *fileBackend) masterPassword() ([]byte, error) {
	b.mu.Lock()
	explicit := append([]byte(nil), b.password...)
	b.mu.Unlock()
	if len(explicit) > 0 {
		return explicit, nil
	}

	existing, err := os.ReadFile(b.masterKeyFile())
	if err == nil {
		return existing, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "tpm-file: reading master key")
	}

	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "tpm-file: creating store dir")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrap(err, "tpm-file: generating master key")
	}
	if err := withRestrictiveUmask(func() error {
		return os.WriteFile(b.masterKeyFile(), key, 0o600)
	}); err != nil {
		return nil, errors.Wrap(err, "tpm-file: persisting master key")
	}
	return key, nil
}

func (b *fileBackend) HasKey(keyName enc.Name) bool {
	_, err := os.Stat(b.fileName(keyName))
	return err == nil
}

func (b *fileBackend) GetKey(keyName enc.Name) (*keys.PrivateKey, error) {
	raw, err := os.ReadFile(b.fileName(keyName))
	if err != nil {
		return nil, errors.Wrapf(err, "tpm-file: reading key %s", keyName)
	}
	if len(raw) < 1 {
		return nil, fmt.Errorf("tpm-file: empty key file for %s", keyName)
	}
	kt := keys.KeyType(raw[0])
	blob := raw[1:]

	password, err := b.masterPassword()
	if err != nil {
		return nil, err
	}

	k := keys.NewPrivateKey()
	if kt == keys.KeyTypeHmac {
		secret, err := keys.DecryptSecret(blob, password)
		if err != nil {
			return nil, fmt.Errorf("tpm-file: decrypting key %s: %w", keyName, err)
		}
		if err := k.LoadRaw(secret); err != nil {
			return nil, err
		}
		return k, nil
	}
	if err := k.LoadPkcs8(blob, kt, password); err != nil {
		return nil, fmt.Errorf("tpm-file: parsing key %s: %w", keyName, err)
	}
	return k, nil
}

func (b *fileBackend) CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error) {
	k, err := keys.GeneratePrivateKey(params)
	if err != nil {
		return nil, err
	}
	if err := b.ImportKey(keyName, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (b *fileBackend) ImportKey(keyName enc.Name, key *keys.PrivateKey) error {
	if b.HasKey(keyName) {
		return fmt.Errorf("tpm-file: key %s already exists", keyName)
	}
	password, err := b.masterPassword()
	if err != nil {
		return err
	}

	var blob []byte
	if key.KeyType() == keys.KeyTypeHmac {
		secret, err := key.SaveRaw()
		if err != nil {
			return fmt.Errorf("tpm-file: encoding key %s: %w", keyName, err)
		}
		blob, err = keys.EncryptSecret(secret, password)
		if err != nil {
			return fmt.Errorf("tpm-file: encrypting key %s: %w", keyName, err)
		}
	} else {
		blob, err = key.SavePkcs8(password)
		if err != nil {
			return fmt.Errorf("tpm-file: encoding key %s: %w", keyName, err)
		}
	}

	raw := append([]byte{byte(key.KeyType())}, blob...)
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return errors.Wrap(err, "tpm-file: creating store dir")
	}
	return withRestrictiveUmask(func() error {
		return os.WriteFile(b.fileName(keyName), raw, 0o600)
	})
}

func (b *fileBackend) DeleteKey(keyName enc.Name) error {
	if err := os.Remove(b.fileName(keyName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tpm-file: deleting key %s: %w", keyName, err)
	}
	return nil
}

func (b *fileBackend) IsTerminalMode() bool { return false }
