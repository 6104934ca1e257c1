package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"math/big"
)

// PublicKey wraps the crypto/* public key types behind a single
// load/save/verify/encrypt surface, analogous to PrivateKey.
type PublicKey struct {
	typ KeyType

	rsaKey  *rsa.PublicKey
	ecKey   *ecdsa.PublicKey // also backs Sm2
	hmacKey []byte           // a "public key" for HMAC is the same secret
}

func newPublicKey(typ KeyType, key any, hmacKey []byte) *PublicKey {
	p := &PublicKey{typ: typ, hmacKey: hmacKey}
	switch v := key.(type) {
	case *rsa.PublicKey:
		p.rsaKey = v
	case *ecdsa.PublicKey:
		p.ecKey = v
	}
	return p
}

// LoadPublicKey parses a DER-encoded SubjectPublicKeyInfo. kt
// disambiguates SM2 from EC, same as PrivateKey.LoadPkcs8.
func LoadPublicKey(der []byte, kt KeyType) (*PublicKey, error) {
	if kt == KeyTypeSm2 {
		// x509's PKIX parser only recognizes the NIST named curves, so
		// SM2 keys carry their own minimal DER encoding (see sm2.go).
		ek, err := parseSm2PublicKey(der)
		if err != nil {
			return nil, &Error{"LoadPublicKey", err.Error()}
		}
		return newPublicKey(KeyTypeSm2, ek, nil), nil
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, &Error{"LoadPublicKey", err.Error()}
	}
	switch key := parsed.(type) {
	case *rsa.PublicKey:
		return newPublicKey(KeyTypeRsa, key, nil), nil
	case *ecdsa.PublicKey:
		if kt == KeyTypeSm2 {
			return newPublicKey(KeyTypeSm2, key, nil), nil
		}
		return newPublicKey(KeyTypeEc, key, nil), nil
	default:
		return nil, &Error{"LoadPublicKey", "unsupported SubjectPublicKeyInfo algorithm"}
	}
}

// LoadHmacPublicKey wraps a shared HMAC secret as a PublicKey so HMAC
// signatures can be verified through the same interface used for the
// asymmetric algorithms.
func LoadHmacPublicKey(secret []byte) *PublicKey {
	return &PublicKey{typ: KeyTypeHmac, hmacKey: append([]byte(nil), secret...)}
}

// KeyType returns the algorithm family.
func (p *PublicKey) KeyType() KeyType { return p.typ }

// Save encodes the key as a DER SubjectPublicKeyInfo. HMAC keys have no
// SubjectPublicKeyInfo form.
func (p *PublicKey) Save() ([]byte, error) {
	switch p.typ {
	case KeyTypeRsa:
		return x509.MarshalPKIXPublicKey(p.rsaKey)
	case KeyTypeEc:
		return x509.MarshalPKIXPublicKey(p.ecKey)
	case KeyTypeSm2:
		return marshalSm2PublicKey(p.ecKey)
	default:
		return nil, &Error{"Save", "key type has no SubjectPublicKeyInfo form"}
	}
}

// Encrypt encrypts plaintext with RSA-OAEP(SHA-256) for an RSA key or
// the GM/T 0003 SM2 asymmetric scheme for an SM2 key. Other key types
// have no defined encryption operation.
func (p *PublicKey) Encrypt(plaintext []byte) ([]byte, error) {
	switch p.typ {
	case KeyTypeRsa:
		ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, p.rsaKey, plaintext, nil)
		if err != nil {
			return nil, &Error{"Encrypt", err.Error()}
		}
		return ct, nil
	case KeyTypeSm2:
		ct, err := sm2Encrypt(p.ecKey, plaintext)
		if err != nil {
			return nil, &Error{"Encrypt", err.Error()}
		}
		return ct, nil
	default:
		return nil, &Error{"Encrypt", "only RSA and SM2 keys support encryption"}
	}
}

// Verify checks sig over data, using the digest algorithm implied by
// the key type (SM3 for SM2, SHA-256 otherwise).
func (p *PublicKey) Verify(data, sig []byte) (bool, error) {
	switch p.typ {
	case KeyTypeRsa:
		digest := sha256.Sum256(data)
		err := rsa.VerifyPKCS1v15(p.rsaKey, crypto.SHA256, digest[:], sig)
		return err == nil, nil
	case KeyTypeEc:
		digest := sha256.Sum256(data)
		return ecdsa.VerifyASN1(p.ecKey, digest[:], sig), nil
	case KeyTypeSm2:
		var parsed struct{ R, S *big.Int }
		if _, err := asn1.Unmarshal(sig, &parsed); err != nil {
			return false, &Error{"Verify", err.Error()}
		}
		return sm2Verify(p.ecKey, nil, data, &sm2Signature{R: parsed.R, S: parsed.S}), nil
	case KeyTypeHmac:
		mac := hmac.New(sha256.New, p.hmacKey)
		mac.Write(data)
		return hmac.Equal(mac.Sum(nil), sig), nil
	default:
		return false, &Error{"Verify", "key not loaded"}
	}
}
