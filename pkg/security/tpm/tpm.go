// Package tpm implements the Trusted Platform Module abstraction: a
// pluggable store of protected private key material, addressed by key
// name and selected at construction time by a locator URI
// ("scheme:location").
package tpm

import (
	"fmt"
	"io"
	"sync"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

// Backend is implemented by each concrete key store (memory, file,
// OS-native keychain, ...). Tpm delegates every operation to a Backend
// chosen by locator scheme.
type Backend interface {
	HasKey(keyName enc.Name) bool
	GetKey(keyName enc.Name) (*keys.PrivateKey, error)
	CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error)
	ImportKey(keyName enc.Name, key *keys.PrivateKey) error
	DeleteKey(keyName enc.Name) error
	IsTerminalMode() bool
}

// PasswordUnlocker is implemented by backends whose stored keys are
// encrypted at rest and need a password before further operations
// decrypt correctly (currently tpm-file). Backends that need no
// password (memory, OS-native keychains) simply don't implement it,
// and Tpm.UnlockTpm is then a no-op, the same optional-capability
// pattern Close uses for io.Closer.
type PasswordUnlocker interface {
	Unlock(password []byte) error
}

// Factory constructs a Backend from the location part of a locator
// ("tpm-file:/path" -> location is "/path").
type Factory func(location string) (Backend, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// RegisterBackend associates scheme with a Backend Factory. Backend
// packages call this from an init() function. Re-registering a scheme
// overwrites the previous factory, matching the teacher's last-wins
// plugin registries.
func RegisterBackend(scheme string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = f
}

// Tpm is the front-facing facade over a single Backend, resolved from
// a locator URI at construction time.
type Tpm struct {
	scheme  string
	backend Backend
}

// New resolves locator ("scheme:location") against the backend
// registry and constructs a Tpm over it.
func New(locator string) (*Tpm, error) {
	scheme, location, err := splitLocator(locator)
	if err != nil {
		return nil, err
	}
	registryMu.Lock()
	factory, ok := registry[scheme]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("tpm: no backend registered for scheme %q", scheme)
	}
	backend, err := factory(location)
	if err != nil {
		return nil, fmt.Errorf("tpm: constructing %q backend: %w", scheme, err)
	}
	return &Tpm{scheme: scheme, backend: backend}, nil
}

func splitLocator(locator string) (scheme, location string, err error) {
	for i := 0; i < len(locator); i++ {
		if locator[i] == ':' {
			return locator[:i], locator[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("tpm: malformed locator %q, expected scheme:location", locator)
}

// Scheme returns the backend scheme this Tpm was constructed with.
func (t *Tpm) Scheme() string { return t.scheme }

// HasKey reports whether keyName has protected key material.
func (t *Tpm) HasKey(keyName enc.Name) bool { return t.backend.HasKey(keyName) }

// GetKey loads the private key for keyName.
func (t *Tpm) GetKey(keyName enc.Name) (*keys.PrivateKey, error) { return t.backend.GetKey(keyName) }

// CreateKey generates a new private key under keyName.
func (t *Tpm) CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error) {
	return t.backend.CreateKey(keyName, params)
}

// ImportKey installs an already-loaded private key under keyName, used
// by SafeBag import.
func (t *Tpm) ImportKey(keyName enc.Name, key *keys.PrivateKey) error {
	return t.backend.ImportKey(keyName, key)
}

// DeleteKey removes the key material for keyName.
func (t *Tpm) DeleteKey(keyName enc.Name) error { return t.backend.DeleteKey(keyName) }

// UnlockTpm supplies the password an at-rest-encrypted backend needs to
// read and write key material. Backends that don't need one ignore it.
func (t *Tpm) UnlockTpm(password []byte) error {
	if u, ok := t.backend.(PasswordUnlocker); ok {
		return u.Unlock(password)
	}
	return nil
}

// ExportPrivateKey asks the backend for keyName's private key and
// returns it PKCS#8-encrypted under password, wrapping any backend
// error. This is how the KeyChain layer exports a key for a SafeBag
// without ever handling the backend's own at-rest representation.
func (t *Tpm) ExportPrivateKey(keyName enc.Name, password []byte) ([]byte, error) {
	priv, err := t.backend.GetKey(keyName)
	if err != nil {
		return nil, fmt.Errorf("tpm: exporting key %s: %w", keyName, err)
	}
	der, err := priv.SavePkcs8(password)
	if err != nil {
		return nil, fmt.Errorf("tpm: exporting key %s: %w", keyName, err)
	}
	return der, nil
}

// ImportPrivateKey decrypts a PKCS#8 blob (as produced by
// ExportPrivateKey) under password and installs it under keyName. kt
// disambiguates SM2 from EC, same as keys.PrivateKey.LoadPkcs8.
func (t *Tpm) ImportPrivateKey(keyName enc.Name, encrypted []byte, kt keys.KeyType, password []byte) error {
	priv := keys.NewPrivateKey()
	if err := priv.LoadPkcs8(encrypted, kt, password); err != nil {
		return fmt.Errorf("tpm: importing key %s: %w", keyName, err)
	}
	if err := t.backend.ImportKey(keyName, priv); err != nil {
		return fmt.Errorf("tpm: importing key %s: %w", keyName, err)
	}
	return nil
}

// IsTerminalMode reports whether the backend requires interactive
// unlocking (e.g. an OS keychain prompting for a password), in which
// case automated/headless callers should treat key operations as
// potentially blocking.
func (t *Tpm) IsTerminalMode() bool { return t.backend.IsTerminalMode() }

// Close releases any resources (open database handles, file locks)
// held by the backend. Backends that need nothing closed (memory,
// file) are no-ops.
func (t *Tpm) Close() error {
	if c, ok := t.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
