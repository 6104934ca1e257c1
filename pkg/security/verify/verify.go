// Package verify implements the free-function signature checks that
// ride on top of a decoded Data or Interest and a key, certificate, or
// TPM-resident key — deliberately decoupled from KeyChain, since
// verification has no need to touch Pib state.
package verify

import (
	"fmt"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
	"github.com/named-data/ndn-keychain/pkg/security/tpm"
	"github.com/named-data/ndn-keychain/pkg/security/transform"
)

// verifySig runs covered through the transform pipeline's VerifierFilter,
// the same Source -> Sink plumbing signing uses, rather than calling
// PublicKey.Verify directly.
func verifySig(covered enc.Wire, sig ndn.Signature, pub *keys.PublicKey) (bool, error) {
	if sig == nil {
		return false, fmt.Errorf("verify: packet is unsigned")
	}
	verifier := transform.NewVerifierFilter(pub, sig.SigValue())
	if err := transform.NewBufferSource(covered.Join()).PumpInto(verifier); err != nil {
		return false, err
	}
	return verifier.Result(), nil
}

// DataWithKey verifies d's signature against pub.
func DataWithKey(d *ndn.Data, pub *keys.PublicKey) (bool, error) {
	covered, err := d.SignedPortion()
	if err != nil {
		return false, err
	}
	return verifySig(covered, d.Signature(), pub)
}

// InterestWithKey verifies in's signature against pub.
func InterestWithKey(in *ndn.Interest, pub *keys.PublicKey) (bool, error) {
	covered, err := in.SignedPortion()
	if err != nil {
		return false, err
	}
	return verifySig(covered, in.Signature(), pub)
}

// publicKeyFromCert extracts and parses the SubjectPublicKeyInfo
// carried in an NDN certificate's Content.
func publicKeyFromCert(cert *pib.Certificate, kt keys.KeyType) (*keys.PublicKey, error) {
	certData, err := ndn.DataFromBytes(cert.Data)
	if err != nil {
		return nil, fmt.Errorf("verify: decoding certificate: %w", err)
	}
	pub, err := keys.LoadPublicKey(certData.Content, kt)
	if err != nil {
		return nil, fmt.Errorf("verify: parsing certificate public key: %w", err)
	}
	return pub, nil
}

// DataWithCert verifies d's signature against the public key carried
// in cert, disambiguated by kt (see keys.KeyTypeFromSignatureType).
func DataWithCert(d *ndn.Data, cert *pib.Certificate, kt keys.KeyType) (bool, error) {
	pub, err := publicKeyFromCert(cert, kt)
	if err != nil {
		return false, err
	}
	return DataWithKey(d, pub)
}

// InterestWithCert verifies in's signature against the public key
// carried in cert.
func InterestWithCert(in *ndn.Interest, cert *pib.Certificate, kt keys.KeyType) (bool, error) {
	pub, err := publicKeyFromCert(cert, kt)
	if err != nil {
		return false, err
	}
	return InterestWithKey(in, pub)
}

// DataWithTpm verifies d's signature using the public half of the
// private key named keyName in t, without going through a certificate
// — useful for checking a packet this KeyChain just signed.
func DataWithTpm(d *ndn.Data, t *tpm.Tpm, keyName enc.Name) (bool, error) {
	priv, err := t.GetKey(keyName)
	if err != nil {
		return false, fmt.Errorf("verify: loading key %s: %w", keyName, err)
	}
	pub, err := priv.GetPublicKey()
	if err != nil {
		return false, err
	}
	return DataWithKey(d, pub)
}

// InterestWithTpm verifies in's signature using the public half of the
// private key named keyName in t.
func InterestWithTpm(in *ndn.Interest, t *tpm.Tpm, keyName enc.Name) (bool, error) {
	priv, err := t.GetKey(keyName)
	if err != nil {
		return false, fmt.Errorf("verify: loading key %s: %w", keyName, err)
	}
	pub, err := priv.GetPublicKey()
	if err != nil {
		return false, err
	}
	return InterestWithKey(in, pub)
}
