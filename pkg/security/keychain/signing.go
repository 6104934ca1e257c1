package keychain

import (
	"fmt"
	"time"

	"github.com/named-data/ndn-keychain/internal/log"
	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
	"github.com/named-data/ndn-keychain/pkg/security/transform"
)

// SignerType picks which of SigningInfo's dispatch rules resolves the
// signing key, mirroring the six signer kinds ndn-cxx's SigningInfo
// distinguishes.
type SignerType int

const (
	// SignerNULL resolves by field presence: KeyName, then CertName,
	// then Identity, then (if all empty) the Pib's default identity's
	// default key, falling back to bare DigestSha256 if there is none.
	// This is the zero value, so existing callers that never set Type
	// keep their current behavior.
	SignerNULL SignerType = iota
	SignerID
	SignerKey
	SignerCert
	// SignerSha256 forces an unkeyed DigestSha256 signature even when a
	// default identity is set.
	SignerSha256
	// SignerHmac signs with the named HMAC key, auto-importing HmacKey
	// into the Tpm first if the key doesn't already exist there.
	SignerHmac
)

// SigningInfo selects which key a Sign call should use.
type SigningInfo struct {
	Type      SignerType
	Identity  enc.Name
	KeyName   enc.Name
	CertName  enc.Name
	HmacKey   []byte // raw key material, used by SignerHmac's auto-import
	NotBefore *time.Time
	NotAfter  *time.Time
}

// signingMethod is the resolved outcome of a SigningInfo: either a TPM
// key to sign with, or a plain digest when no default identity exists.
type signingMethod struct {
	priv       *keys.PrivateKey
	locator    enc.Name
	digestOnly bool
}

// prepareSignatureInfo resolves a SigningInfo to the private key and
// wire KeyLocator name that should sign the packet, dispatching on
// info.Type.
func (kc *KeyChain) prepareSignatureInfo(info SigningInfo) (signingMethod, error) {
	switch info.Type {
	case SignerSha256:
		return signingMethod{digestOnly: true}, nil
	case SignerHmac:
		return kc.prepareHmacSigningMethod(info)
	case SignerID:
		if info.Identity == nil {
			return signingMethod{}, fmt.Errorf("keychain: SignerID requires Identity")
		}
		return kc.signingMethodForIdentity(info.Identity)
	case SignerKey:
		if info.KeyName == nil {
			return signingMethod{}, fmt.Errorf("keychain: SignerKey requires KeyName")
		}
		return kc.signingMethodForKey(info.KeyName, info.KeyName)
	case SignerCert:
		if info.CertName == nil {
			return signingMethod{}, fmt.Errorf("keychain: SignerCert requires CertName")
		}
		kn, err := pib.KeyOf(info.CertName)
		if err != nil {
			return signingMethod{}, fmt.Errorf("keychain: %w", err)
		}
		return kc.signingMethodForKey(kn, info.CertName)
	}

	// SignerNULL: dispatch by field presence, most to least specific —
	// KeyName, then CertName, then Identity, then the Pib's default
	// identity's default key, falling back to bare-digest signing if
	// there is none.
	switch {
	case info.KeyName != nil:
		return kc.signingMethodForKey(info.KeyName, info.KeyName)
	case info.CertName != nil:
		kn, err := pib.KeyOf(info.CertName)
		if err != nil {
			return signingMethod{}, fmt.Errorf("keychain: %w", err)
		}
		return kc.signingMethodForKey(kn, info.CertName)
	case info.Identity != nil:
		return kc.signingMethodForIdentity(info.Identity)
	default:
		id, err := kc.Pib.DefaultIdentity()
		if err == pib.ErrNotFound {
			log.Warn(logModule, "no default identity, falling back to bare-digest signing")
			return signingMethod{digestOnly: true}, nil
		} else if err != nil {
			return signingMethod{}, fmt.Errorf("keychain: no default identity: %w", err)
		}
		return kc.signingMethodForIdentity(id.Name)
	}
}

func (kc *KeyChain) signingMethodForIdentity(identity enc.Name) (signingMethod, error) {
	k, err := kc.Pib.DefaultKey(identity)
	if err != nil {
		return signingMethod{}, fmt.Errorf("keychain: no default key for identity %s: %w", identity, err)
	}
	return kc.signingMethodForKey(k.Name, k.Name)
}

func (kc *KeyChain) signingMethodForKey(kn, locator enc.Name) (signingMethod, error) {
	priv, err := kc.Tpm.GetKey(kn)
	if err != nil {
		return signingMethod{}, fmt.Errorf("keychain: loading key %s: %w", kn, err)
	}
	return signingMethod{priv: priv, locator: locator}, nil
}

// prepareHmacSigningMethod resolves SignerHmac: sign with the named
// HMAC key, importing info.HmacKey into the Tpm first if the key isn't
// already there.
func (kc *KeyChain) prepareHmacSigningMethod(info SigningInfo) (signingMethod, error) {
	kn := info.KeyName
	if kn == nil {
		return signingMethod{}, fmt.Errorf("keychain: SignerHmac requires KeyName")
	}
	if !kc.Tpm.HasKey(kn) {
		if info.HmacKey == nil {
			return signingMethod{}, fmt.Errorf("keychain: hmac key %s not found and no key material given to import", kn)
		}
		hk := keys.NewPrivateKey()
		if err := hk.LoadRaw(info.HmacKey); err != nil {
			return signingMethod{}, fmt.Errorf("keychain: importing hmac key %s: %w", kn, err)
		}
		if err := kc.Tpm.ImportKey(kn, hk); err != nil {
			return signingMethod{}, fmt.Errorf("keychain: importing hmac key %s: %w", kn, err)
		}
		log.Info(logModule, fmt.Sprintf("auto-imported hmac key %s", kn))
	}
	priv, err := kc.Tpm.GetKey(kn)
	if err != nil {
		return signingMethod{}, fmt.Errorf("keychain: loading hmac key %s: %w", kn, err)
	}
	if priv.KeyType() != keys.KeyTypeHmac {
		return signingMethod{}, fmt.Errorf("keychain: key %s is not an hmac key", kn)
	}
	return signingMethod{priv: priv, locator: kn}, nil
}

// digestSign runs covered through the transform pipeline's DigestFilter
// rather than calling crypto/sha256 directly, so unkeyed digest
// signatures go through the same Source -> Filter -> Sink plumbing as
// keyed ones.
func digestSign(covered enc.Wire) []byte {
	sink := transform.NewBufferSink()
	digest := transform.NewDigestFilter(keys.DigestSha256, sink)
	_ = transform.NewBufferSource(covered.Join()).PumpInto(digest)
	return sink.Buf()
}

// signWithKey signs covered by pumping it through a SignerFilter, the
// transform pipeline's wrapper around PrivateKey.Sign.
func signWithKey(priv *keys.PrivateKey, covered enc.Wire) ([]byte, error) {
	sink := transform.NewBufferSink()
	signer := transform.NewSignerFilter(priv, sink)
	if err := transform.NewBufferSource(covered.Join()).PumpInto(signer); err != nil {
		return nil, err
	}
	return sink.Buf(), nil
}

// SignData signs d according to info.
func (kc *KeyChain) SignData(d *ndn.Data, info SigningInfo) error {
	m, err := kc.prepareSignatureInfo(info)
	if err != nil {
		return err
	}
	if m.digestOnly {
		d.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureDigestSha256})
		covered, err := d.SignedPortion()
		if err != nil {
			return err
		}
		d.SetSignatureValue(digestSign(covered))
		return nil
	}
	sigType, err := keys.SignatureTypeFor(m.priv.KeyType(), m.priv.DigestAlgorithm())
	if err != nil {
		return fmt.Errorf("keychain: signing %s: %w", d.Name, err)
	}
	d.SetSignatureInfo(&ndn.SigConfig{
		Type: sigType, KeyName: m.locator,
		NotBefore: info.NotBefore, NotAfter: info.NotAfter,
	})
	covered, err := d.SignedPortion()
	if err != nil {
		return err
	}
	sig, err := signWithKey(m.priv, covered)
	if err != nil {
		return fmt.Errorf("keychain: signing %s: %w", d.Name, err)
	}
	d.SetSignatureValue(sig)
	return nil
}

// SignInterest signs in according to info.
func (kc *KeyChain) SignInterest(in *ndn.Interest, info SigningInfo) error {
	m, err := kc.prepareSignatureInfo(info)
	if err != nil {
		return err
	}
	if m.digestOnly {
		in.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureDigestSha256})
		covered, err := in.SignedPortion()
		if err != nil {
			return err
		}
		in.SetSignatureValue(digestSign(covered))
		return nil
	}
	sigType, err := keys.SignatureTypeFor(m.priv.KeyType(), m.priv.DigestAlgorithm())
	if err != nil {
		return fmt.Errorf("keychain: signing interest %s: %w", in.Name, err)
	}
	in.SetSignatureInfo(&ndn.SigConfig{Type: sigType, KeyName: m.locator})
	covered, err := in.SignedPortion()
	if err != nil {
		return err
	}
	sig, err := signWithKey(m.priv, covered)
	if err != nil {
		return fmt.Errorf("keychain: signing interest %s: %w", in.Name, err)
	}
	in.SetSignatureValue(sig)
	return nil
}
