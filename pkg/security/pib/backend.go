package pib

import (
	"fmt"
	"sync"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// Backend is implemented by each concrete metadata store (memory,
// sqlite, ...). Pib delegates every operation to a Backend chosen by
// locator scheme, the same pattern package tpm uses.
type Backend interface {
	Identities() ([]Identity, error)
	GetIdentity(name enc.Name) (*Identity, error)
	AddIdentity(name enc.Name) error
	RemoveIdentity(name enc.Name) error
	SetDefaultIdentity(name enc.Name) error
	DefaultIdentity() (*Identity, error)

	KeysOf(identity enc.Name) ([]Key, error)
	GetKey(keyName enc.Name) (*Key, error)
	AddKey(identity enc.Name, key Key) error
	RemoveKey(keyName enc.Name) error
	SetDefaultKey(identity enc.Name, keyName enc.Name) error
	DefaultKey(identity enc.Name) (*Key, error)

	CertsOf(keyName enc.Name) ([]Certificate, error)
	GetCert(certName enc.Name) (*Certificate, error)
	AddCert(keyName enc.Name, cert Certificate) error
	RemoveCert(certName enc.Name) error
	SetDefaultCert(keyName enc.Name, certName enc.Name) error
	DefaultCert(keyName enc.Name) (*Certificate, error)

	// TpmLocator and SetTpmLocator record which Tpm locator this Pib was
	// last paired with, so KeyChain can detect a mismatched pairing.
	TpmLocator() (string, error)
	SetTpmLocator(locator string) error

	// Reset discards every identity, key and certificate, keeping the
	// backend itself (and its TpmLocator) in place.
	Reset() error
}

// Factory constructs a Backend from the location part of a locator.
type Factory func(location string) (Backend, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// RegisterBackend associates scheme with a Backend Factory.
func RegisterBackend(scheme string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = f
}

func resolve(locator string) (Backend, error) {
	scheme, location, err := splitLocator(locator)
	if err != nil {
		return nil, err
	}
	registryMu.Lock()
	factory, ok := registry[scheme]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("pib: no backend registered for scheme %q", scheme)
	}
	return factory(location)
}

func splitLocator(locator string) (scheme, location string, err error) {
	for i := 0; i < len(locator); i++ {
		if locator[i] == ':' {
			return locator[:i], locator[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("pib: malformed locator %q, expected scheme:location", locator)
}
