package tpm

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

func init() {
	factory := func(location string) (Backend, error) {
		service := location
		if service == "" {
			service = "ndn-keychain"
		}
		return &osxBackend{service: service}, nil
	}
	// "tpm-osx" is the scheme named by this library's external
	// interface; "tpm-osxkeychain" is kept as an alias for locators
	// written against the original NDN client library's naming.
	RegisterBackend("tpm-osx", factory)
	RegisterBackend("tpm-osxkeychain", factory)
}

// osxBackend stores private keys in the platform keychain via
// zalando/go-keyring, the same account-per-secret approach
// jeremyhahn-go-keychain's OS-native backends use. Entries are
// base64(type-tag || PKCS#1 or raw bytes), same payload format as
// bboltBackend, keyed by account = hex(sha256(keyName)).
type osxBackend struct {
	service string
}

func (b *osxBackend) account(keyName enc.Name) string {
	h := sha256.Sum256(keyName.Bytes())
	return hex.EncodeToString(h[:])
}

func (b *osxBackend) HasKey(keyName enc.Name) bool {
	_, err := keyring.Get(b.service, b.account(keyName))
	return err == nil
}

func (b *osxBackend) GetKey(keyName enc.Name) (*keys.PrivateKey, error) {
	secret, err := keyring.Get(b.service, b.account(keyName))
	if err != nil {
		return nil, fmt.Errorf("tpm-osxkeychain: reading key %s: %w", keyName, err)
	}
	block, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("tpm-osxkeychain: decoding key %s: %w", keyName, err)
	}
	if len(block) < 1 {
		return nil, errors.New("tpm-osxkeychain: empty keychain entry")
	}
	kt := keys.KeyType(block[0])
	payload := block[1:]
	k := keys.NewPrivateKey()
	if kt == keys.KeyTypeHmac {
		if err := k.LoadRaw(payload); err != nil {
			return nil, err
		}
		return k, nil
	}
	if err := k.LoadPkcs1(payload, kt); err != nil {
		return nil, fmt.Errorf("tpm-osxkeychain: parsing key %s: %w", keyName, err)
	}
	return k, nil
}

func (b *osxBackend) CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error) {
	k, err := keys.GeneratePrivateKey(params)
	if err != nil {
		return nil, err
	}
	if err := b.ImportKey(keyName, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (b *osxBackend) ImportKey(keyName enc.Name, key *keys.PrivateKey) error {
	if b.HasKey(keyName) {
		return fmt.Errorf("tpm-osxkeychain: key %s already exists", keyName)
	}
	var payload []byte
	var err error
	if key.KeyType() == keys.KeyTypeHmac {
		payload, err = key.SaveRaw()
	} else {
		payload, err = key.SavePkcs1()
	}
	if err != nil {
		return fmt.Errorf("tpm-osxkeychain: encoding key %s: %w", keyName, err)
	}
	block := append([]byte{byte(key.KeyType())}, payload...)
	secret := base64.StdEncoding.EncodeToString(block)
	if err := keyring.Set(b.service, b.account(keyName), secret); err != nil {
		return fmt.Errorf("tpm-osxkeychain: storing key %s: %w", keyName, err)
	}
	return nil
}

func (b *osxBackend) DeleteKey(keyName enc.Name) error {
	if err := keyring.Delete(b.service, b.account(keyName)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("tpm-osxkeychain: deleting key %s: %w", keyName, err)
	}
	return nil
}

// IsTerminalMode reports true: the OS keychain may prompt the user
// interactively to unlock, unlike the memory/file backends.
func (b *osxBackend) IsTerminalMode() bool { return true }
