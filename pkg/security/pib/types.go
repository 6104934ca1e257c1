// Package pib implements the Public Information Base: the metadata
// store of identities, keys and certificates that sits alongside the
// tpm package's protected key material. A Pib never holds private key
// bytes; KeyBits returns the public key's DER encoding.
package pib

import (
	"fmt"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
)

// Identity is one named identity and the keys registered under it.
type Identity struct {
	Name      enc.Name
	IsDefault bool
}

// Key is one key registered under an identity; key name must be a
// strict extension of the identity name.
type Key struct {
	Name      enc.Name
	KeyBits   []byte // DER SubjectPublicKeyInfo
	IsDefault bool
}

// Certificate is a signed Data packet asserting a key's validity, plus
// the metadata the store needs to index it.
type Certificate struct {
	Name       enc.Name
	Data       []byte // wire-encoded Data packet
	KeyLocator enc.Name
	IsDefault  bool
}

// ErrNotFound is returned by lookups that find nothing.
var ErrNotFound = fmt.Errorf("pib: not found")

// IdentityOf returns the identity name a key name was issued under:
// the key name with its last two components (KEY, key-id) removed.
func IdentityOf(keyName enc.Name) (enc.Name, error) {
	if len(keyName) < 2 || !keyName[len(keyName)-2].Equal(enc.NewStringComponent(enc.TypeGenericNameComponent, "KEY")) {
		return nil, fmt.Errorf("pib: %s is not a well-formed key name", keyName)
	}
	return keyName[:len(keyName)-2], nil
}

// KeyOf returns the key name a certificate name was issued for: the
// certificate name with its last two components (issuer-id, version)
// removed.
func KeyOf(certName enc.Name) (enc.Name, error) {
	if len(certName) < 2 {
		return nil, fmt.Errorf("pib: %s is not a well-formed certificate name", certName)
	}
	return certName[:len(certName)-2], nil
}

// ParseCertificate decodes a stored certificate's Data wire and
// extracts its KeyLocator.
func ParseCertificate(wire []byte) (enc.Name, error) {
	d, err := ndn.DataFromBytes(wire)
	if err != nil {
		return nil, fmt.Errorf("pib: decoding certificate: %w", err)
	}
	sig := d.Signature()
	if sig == nil {
		return nil, fmt.Errorf("pib: certificate has no signature")
	}
	return sig.KeyName(), nil
}
