// Package keychain implements KeyChain: the facade that keeps a Pib
// (identity/key/certificate metadata) and a Tpm (protected private key
// material) consistent with each other, and turns that state into
// signed Data and Interest packets.
package keychain

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/named-data/ndn-keychain/internal/log"
	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
	"github.com/named-data/ndn-keychain/pkg/security/tpm"
)

const logModule = "KeyChain"

const keyComponent = "KEY"
const selfIssuer = "self"

// KeyChain is the entry point of the security core: construction
// resolves a Pib locator and a Tpm locator (directly, via the
// NDN_CLIENT_PIB/NDN_CLIENT_TPM environment variables, or via a config
// file) to concrete backends, and every other operation is a method on
// the resulting value.
type KeyChain struct {
	Pib *pib.Pib
	Tpm *tpm.Tpm
}

// DefaultPibLocator and DefaultTpmLocator are the locators NewDefault
// falls back to, and the pairing New silently enforces for the default
// Pib: the default Pib must always be paired with the default Tpm,
// same as ndn-cxx's KeyChain::KeyChain (key-chain.cpp).
const (
	DefaultPibLocator = "pib-memory:"
	DefaultTpmLocator = "tpm-memory:"
)

// New constructs a KeyChain directly from a Pib and Tpm locator.
//
// The Pib records which Tpm locator it was last paired with. Two
// mismatch cases are handled differently, mirroring ndn-cxx:
//
//   - pibLocator is the default Pib locator: the default Pib must
//     always be paired with the default Tpm, so a stale pairing is
//     silently reset and DefaultTpmLocator is adopted regardless of
//     allowReset or the tpmLocator argument.
//   - any other Pib: a mismatch against the requested tpmLocator is
//     rejected unless allowReset is true, in which case the Pib is
//     reset (every identity, key and certificate discarded) and
//     re-paired with tpmLocator.
//
// This is KeyChain's other named error-recovery case, alongside the
// missing-default-identity digest fallback in signing.go.
func New(pibLocator, tpmLocator string, allowReset bool) (*KeyChain, error) {
	p, err := pib.New(pibLocator)
	if err != nil {
		return nil, fmt.Errorf("keychain: %w", err)
	}
	prevTpm, err := p.TpmLocator()
	if err != nil {
		return nil, fmt.Errorf("keychain: reading tpm locator: %w", err)
	}

	effectiveTpm := tpmLocator
	switch {
	case pibLocator == DefaultPibLocator:
		if prevTpm != "" && prevTpm != DefaultTpmLocator {
			log.Warn(logModule, fmt.Sprintf("default pib was paired with tpm %q, resetting for default tpm %q", prevTpm, DefaultTpmLocator))
			if err := p.Reset(); err != nil {
				return nil, fmt.Errorf("keychain: resetting default pib: %w", err)
			}
			effectiveTpm = DefaultTpmLocator
		}
	case prevTpm != "" && prevTpm != tpmLocator:
		if !allowReset {
			return nil, fmt.Errorf("keychain: pib is paired with tpm locator %q, not %q", prevTpm, tpmLocator)
		}
		log.Warn(logModule, fmt.Sprintf("pib was paired with tpm %q, resetting for %q", prevTpm, tpmLocator))
		if err := p.Reset(); err != nil {
			return nil, fmt.Errorf("keychain: resetting pib for new tpm locator: %w", err)
		}
	}

	t, err := tpm.New(effectiveTpm)
	if err != nil {
		return nil, fmt.Errorf("keychain: %w", err)
	}
	if prevTpm != effectiveTpm {
		if err := p.SetTpmLocator(effectiveTpm); err != nil {
			return nil, fmt.Errorf("keychain: recording tpm locator: %w", err)
		}
	}
	return &KeyChain{Pib: p, Tpm: t}, nil
}

// envPib and envTpm are the environment variables NewDefault consults,
// matching ndn-cxx's NDN_CLIENT_PIB / NDN_CLIENT_TPM.
const (
	envPib = "NDN_CLIENT_PIB"
	envTpm = "NDN_CLIENT_TPM"
)

// NewDefault resolves the Pib and Tpm locators from the
// NDN_CLIENT_PIB / NDN_CLIENT_TPM environment variables, falling back
// to DefaultPibLocator/DefaultTpmLocator when unset — suitable for
// tests and one-shot tools, not for a long-lived identity store.
func NewDefault() (*KeyChain, error) {
	pibLoc := os.Getenv(envPib)
	if pibLoc == "" {
		pibLoc = DefaultPibLocator
	}
	tpmLoc := os.Getenv(envTpm)
	if tpmLoc == "" {
		tpmLoc = DefaultTpmLocator
	}
	return New(pibLoc, tpmLoc, true)
}

func makeKeyName(identity enc.Name, keyID string) enc.Name {
	return identity.AppendGeneric(keyComponent).AppendGeneric(keyID)
}

func certName(kn enc.Name, issuerID string, version uint64) enc.Name {
	return kn.AppendGeneric(issuerID).AppendVersion(version)
}

func randomID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	var b strings.Builder
	for _, x := range buf {
		fmt.Fprintf(&b, "%02x", x)
	}
	return b.String()
}

// CreateIdentity creates a new identity with one key of the given
// parameters, and a self-signed certificate for that key, registering
// all three in the Pib and the key material in the Tpm. If the
// identity already exists in the Pib, its existing default key is
// reused instead of generating a new one.
func (kc *KeyChain) CreateIdentity(identity enc.Name, params keys.KeyParams) (*pib.Identity, error) {
	if err := kc.Pib.AddIdentity(identity); err != nil {
		return nil, fmt.Errorf("keychain: creating identity %s: %w", identity, err)
	}
	if _, err := kc.Pib.DefaultKey(identity); err == pib.ErrNotFound {
		log.Info(logModule, fmt.Sprintf("identity %s has no default key, generating one", identity))
		if _, err := kc.CreateKey(identity, params); err != nil {
			return nil, err
		}
	}
	return kc.Pib.GetIdentity(identity)
}

// CreateKey generates a new key under identity, registers it in the
// Tpm and Pib, and issues it a self-signed certificate.
func (kc *KeyChain) CreateKey(identity enc.Name, params keys.KeyParams) (*pib.Key, error) {
	kn := makeKeyName(identity, randomID())
	priv, err := kc.Tpm.CreateKey(kn, params)
	if err != nil {
		return nil, fmt.Errorf("keychain: generating key %s: %w", kn, err)
	}
	pub, err := priv.GetPublicKey()
	if err != nil {
		return nil, fmt.Errorf("keychain: deriving public key for %s: %w", kn, err)
	}
	der, err := pub.Save()
	if err != nil {
		return nil, fmt.Errorf("keychain: encoding public key for %s: %w", kn, err)
	}
	if err := kc.Pib.AddKey(identity, pib.Key{Name: kn, KeyBits: der}); err != nil {
		return nil, fmt.Errorf("keychain: registering key %s: %w", kn, err)
	}
	if err := kc.selfSign(identity, kn, priv, params.Type); err != nil {
		return nil, err
	}
	return kc.Pib.GetKey(kn)
}

func (kc *KeyChain) selfSign(identity, kn enc.Name, priv *keys.PrivateKey, kt keys.KeyType) error {
	cn := certName(kn, selfIssuer, 1)
	sigType, err := keys.SignatureTypeFor(kt, priv.DigestAlgorithm())
	if err != nil {
		return fmt.Errorf("keychain: signature type for self-cert of %s: %w", kn, err)
	}
	pub, err := priv.GetPublicKey()
	if err != nil {
		return err
	}
	content, err := pub.Save()
	if err != nil {
		return err
	}
	notBefore := time.Now().UTC()
	notAfter := notBefore.AddDate(20, 0, 0)
	contentType := ndn.ContentTypeKey
	freshness := time.Hour
	d := &ndn.Data{
		Name:    cn,
		Content: content,
		MetaInfo: ndn.MetaInfo{
			ContentType:     &contentType,
			FreshnessPeriod: &freshness,
		},
	}
	d.SetSignatureInfo(&ndn.SigConfig{Type: sigType, KeyName: kn, NotBefore: &notBefore, NotAfter: &notAfter})
	covered, err := d.SignedPortion()
	if err != nil {
		return err
	}
	sig, err := signWithKey(priv, covered)
	if err != nil {
		return fmt.Errorf("keychain: self-signing %s: %w", kn, err)
	}
	d.SetSignatureValue(sig)
	wire, err := d.Encode()
	if err != nil {
		return err
	}
	return kc.Pib.AddCert(kn, pib.Certificate{Name: cn, Data: wire, KeyLocator: kn})
}

// DeleteIdentity removes an identity and every key/certificate issued
// under it from both the Pib and the Tpm.
func (kc *KeyChain) DeleteIdentity(identity enc.Name) error {
	ks, err := kc.Pib.KeysOf(identity)
	if err != nil {
		return err
	}
	for _, k := range ks {
		if err := kc.Tpm.DeleteKey(k.Name); err != nil {
			return err
		}
	}
	return kc.Pib.RemoveIdentity(identity)
}

// DeleteKey removes a key and its certificates from both the Pib and
// the Tpm, Pib first: unlike DeleteIdentity, a single key's metadata
// can be dropped without orphaning anything else in the Pib, so the
// cheaper, reversible step goes first and the Tpm key is only dropped
// once the Pib has forgotten it.
func (kc *KeyChain) DeleteKey(keyName enc.Name) error {
	if err := kc.Pib.RemoveKey(keyName); err != nil {
		return err
	}
	if err := kc.Tpm.DeleteKey(keyName); err != nil {
		return err
	}
	log.Info(logModule, fmt.Sprintf("deleted key %s", keyName))
	return nil
}

// AddCertificate registers an externally-issued certificate for
// keyName.
func (kc *KeyChain) AddCertificate(keyName enc.Name, wire []byte) error {
	d, err := ndn.DataFromBytes(wire)
	if err != nil {
		return fmt.Errorf("keychain: decoding certificate: %w", err)
	}
	sig := d.Signature()
	var locator enc.Name
	if sig != nil {
		locator = sig.KeyName()
	}
	return kc.Pib.AddCert(keyName, pib.Certificate{Name: d.Name, Data: wire, KeyLocator: locator})
}

// SetDefaultIdentity marks identity as the Pib's default.
func (kc *KeyChain) SetDefaultIdentity(identity enc.Name) error {
	return kc.Pib.SetDefaultIdentity(identity)
}

// SetDefaultKeyOfIdentity marks keyName as identity's default key.
func (kc *KeyChain) SetDefaultKeyOfIdentity(identity, keyName enc.Name) error {
	return kc.Pib.SetDefaultKey(identity, keyName)
}

// SetDefaultCertificateOfKey marks certName as keyName's default
// certificate.
func (kc *KeyChain) SetDefaultCertificateOfKey(keyName, certName enc.Name) error {
	return kc.Pib.SetDefaultCert(keyName, certName)
}
