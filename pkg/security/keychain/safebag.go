package keychain

import (
	"fmt"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
)

// provePossessionVector is the fixed payload signed to prove that an
// imported private key actually matches a certificate's public key.
var provePossessionVector = []byte{0x01, 0x02, 0x03, 0x04}

// provePossession signs provePossessionVector with priv and verifies
// the result against pub, using each key's own digest algorithm (SM3
// for SM2, SHA256 otherwise). A mismatch here means the SafeBag's
// private key and certificate do not actually pair up.
func provePossession(priv *keys.PrivateKey, pub *keys.PublicKey) error {
	sig, err := priv.Sign(provePossessionVector)
	if err != nil {
		return fmt.Errorf("proving possession: signing: %w", err)
	}
	ok, err := pub.Verify(provePossessionVector, sig)
	if err != nil {
		return fmt.Errorf("proving possession: verifying: %w", err)
	}
	if !ok {
		return fmt.Errorf("proving possession: recovered private key does not match certificate's public key")
	}
	return nil
}

// SafeBag bundles a certificate with its encrypted private key, for
// transferring an identity between KeyChains.
type SafeBag struct {
	Certificate     []byte // wire-encoded Data
	EncryptedKeyBag []byte // password-encrypted PKCS#8
}

// ExportSafeBag packages keyName's certificate certName (its default
// certificate if certName is nil) and private key into a SafeBag
// encrypted with password.
func (kc *KeyChain) ExportSafeBag(keyName, certName enc.Name, password []byte) (*SafeBag, error) {
	var cert *pib.Certificate
	var err error
	if certName != nil {
		cert, err = kc.Pib.GetCert(certName)
	} else {
		cert, err = kc.Pib.DefaultCert(keyName)
	}
	if err != nil {
		return nil, fmt.Errorf("keychain: exporting %s: %w", keyName, err)
	}
	encKey, err := kc.Tpm.ExportPrivateKey(keyName, password)
	if err != nil {
		return nil, fmt.Errorf("keychain: exporting %s: %w", keyName, err)
	}
	return &SafeBag{Certificate: cert.Data, EncryptedKeyBag: encKey}, nil
}

// ImportSafeBag decrypts and validates bag, then installs its
// identity, key and certificate. If any step after the Tpm import fails
// (a proof-of-possession mismatch between the recovered private key and
// the certificate's public key, or a Pib write), the imported Tpm key is
// deleted; Pib entries written before the failing step are not removed.
//
// The certificate's SignatureType, not the raw PKCS#8 key bytes, is the
// authoritative source for whether an EC-shaped private key is EC or
// SM2 (see keys.KeyTypeFromSignatureType): the two share an encoding at
// the PKCS#8 level and cannot be told apart from the key bytes alone.
func (kc *KeyChain) ImportSafeBag(bag *SafeBag, password []byte) error {
	cert, err := ndn.DataFromBytes(bag.Certificate)
	if err != nil {
		return fmt.Errorf("keychain: importing: decoding certificate: %w", err)
	}
	sig := cert.Signature()
	if sig == nil {
		return fmt.Errorf("keychain: importing: certificate has no signature")
	}
	kt, err := keys.KeyTypeFromSignatureType(sig.SigType())
	if err != nil {
		return fmt.Errorf("keychain: importing: %w", err)
	}

	certPub, err := keys.LoadPublicKey(cert.Content, kt)
	if err != nil {
		return fmt.Errorf("keychain: importing: parsing certificate public key: %w", err)
	}
	certDER, err := certPub.Save()
	if err != nil {
		return fmt.Errorf("keychain: importing: %w", err)
	}

	keyName := sig.KeyName()
	if keyName == nil {
		return fmt.Errorf("keychain: importing: certificate has no KeyLocator")
	}
	identity, err := pib.IdentityOf(keyName)
	if err != nil {
		return fmt.Errorf("keychain: importing: %w", err)
	}
	if kc.Tpm.HasKey(keyName) {
		return fmt.Errorf("keychain: importing: tpm already has key %s", keyName)
	}
	if _, err := kc.Pib.GetKey(keyName); err == nil {
		return fmt.Errorf("keychain: importing: pib already has key %s", keyName)
	}

	if err := kc.Tpm.ImportPrivateKey(keyName, bag.EncryptedKeyBag, kt, password); err != nil {
		return fmt.Errorf("keychain: importing: %w", err)
	}
	priv, err := kc.Tpm.GetKey(keyName)
	if err != nil {
		kc.Tpm.DeleteKey(keyName)
		return fmt.Errorf("keychain: importing: %w", err)
	}

	if err := provePossession(priv, certPub); err != nil {
		kc.Tpm.DeleteKey(keyName)
		return fmt.Errorf("keychain: importing: %w", err)
	}

	if err := kc.Pib.AddIdentity(identity); err != nil {
		kc.Tpm.DeleteKey(keyName)
		return fmt.Errorf("keychain: importing: %w", err)
	}
	if err := kc.Pib.AddKey(identity, pib.Key{Name: keyName, KeyBits: certDER}); err != nil {
		kc.Tpm.DeleteKey(keyName)
		return fmt.Errorf("keychain: importing: %w", err)
	}
	if err := kc.Pib.AddCert(keyName, pib.Certificate{Name: cert.Name, Data: bag.Certificate, KeyLocator: keyName}); err != nil {
		kc.Tpm.DeleteKey(keyName)
		return fmt.Errorf("keychain: importing: %w", err)
	}
	return nil
}

// ImportPrivateKey installs priv under keyName without a certificate,
// for callers that manage certificates out of band.
func (kc *KeyChain) ImportPrivateKey(keyName enc.Name, priv *keys.PrivateKey) error {
	identity, err := pib.IdentityOf(keyName)
	if err != nil {
		return err
	}
	if err := kc.Tpm.ImportKey(keyName, priv); err != nil {
		return err
	}
	if err := kc.Pib.AddIdentity(identity); err != nil {
		return err
	}
	pub, err := priv.GetPublicKey()
	if err != nil {
		return err
	}
	der, err := pub.Save()
	if err != nil {
		return err
	}
	return kc.Pib.AddKey(identity, pib.Key{Name: keyName, KeyBits: der})
}
