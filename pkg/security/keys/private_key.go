package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"math/big"

	"github.com/youmark/pkcs8"
)

// PrivateKey wraps the concrete crypto/* private key types behind a
// single load/save/sign surface, tagged with the KeyType needed to
// disambiguate SM2 from EC at the PKCS#8 level.
//
// A PrivateKey is either returned populated by GeneratePrivateKey or
// starts empty (NewPrivateKey) and is populated by exactly one LoadXxx
// call; calling a second LoadXxx on an already-loaded instance is an
// error, mirroring the teacher's once-initialized key
// wrappers.
type PrivateKey struct {
	typ KeyType

	rsaKey  *rsa.PrivateKey
	ecKey   *ecdsa.PrivateKey // also backs Sm2; typ disambiguates
	hmacKey []byte
}

// NewPrivateKey returns an empty, unloaded key wrapper.
func NewPrivateKey() *PrivateKey { return &PrivateKey{} }

func (k *PrivateKey) loaded() bool { return k.typ != KeyTypeNone }

// KeyType returns the algorithm family, or KeyTypeNone if unloaded.
func (k *PrivateKey) KeyType() KeyType { return k.typ }

// KeySize returns the key size in bits.
func (k *PrivateKey) KeySize() int {
	switch k.typ {
	case KeyTypeRsa:
		return k.rsaKey.N.BitLen()
	case KeyTypeEc, KeyTypeSm2:
		return k.ecKey.Curve.Params().BitSize
	case KeyTypeHmac:
		return len(k.hmacKey) * 8
	default:
		return 0
	}
}

// DigestAlgorithm returns the hash this key's signatures are computed
// over: Sm3 for SM2, Sha256 for everything else.
func (k *PrivateKey) DigestAlgorithm() DigestAlgorithm {
	if k.typ == KeyTypeSm2 {
		return DigestSm3
	}
	return DigestSha256
}

// GeneratePrivateKey creates a fresh key of the requested type and
// size, dispatching to the matching crypto/* key-generation routine
// (or, for SM2, this module's curve-scalar generator).
func GeneratePrivateKey(params KeyParams) (*PrivateKey, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	k := &PrivateKey{}
	switch params.Type {
	case KeyTypeRsa:
		rk, err := rsa.GenerateKey(rand.Reader, params.Size)
		if err != nil {
			return nil, &Error{"GeneratePrivateKey", err.Error()}
		}
		k.rsaKey = rk
	case KeyTypeEc:
		curve, err := curveForBits(params.Size)
		if err != nil {
			return nil, err
		}
		ek, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, &Error{"GeneratePrivateKey", err.Error()}
		}
		k.ecKey = ek
	case KeyTypeSm2:
		ek, err := generateSm2Key()
		if err != nil {
			return nil, &Error{"GeneratePrivateKey", err.Error()}
		}
		k.ecKey = ek
	case KeyTypeHmac:
		buf := make([]byte, (params.Size+7)/8)
		if _, err := rand.Read(buf); err != nil {
			return nil, &Error{"GeneratePrivateKey", err.Error()}
		}
		k.hmacKey = buf
	default:
		return nil, &Error{"GeneratePrivateKey", "unsupported key type"}
	}
	k.typ = params.Type
	return k, nil
}

func curveForBits(bits int) (elliptic.Curve, error) {
	switch bits {
	case 224:
		return elliptic.P224(), nil
	case 256:
		return elliptic.P256(), nil
	case 384:
		return elliptic.P384(), nil
	case 521:
		return elliptic.P521(), nil
	default:
		return nil, &Error{"curveForBits", "unsupported EC curve size"}
	}
}

// LoadPkcs1 loads a DER-encoded PKCS#1 RSA key, a SEC1 EC key, or an
// SM2 key in this module's own DER encoding. kt selects which.
func (k *PrivateKey) LoadPkcs1(der []byte, kt KeyType) error {
	if k.loaded() {
		return errAlreadyLoaded("LoadPkcs1")
	}
	switch kt {
	case KeyTypeRsa:
		rk, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return &Error{"LoadPkcs1", err.Error()}
		}
		k.rsaKey = rk
	case KeyTypeEc:
		ek, err := x509.ParseECPrivateKey(der)
		if err != nil {
			return &Error{"LoadPkcs1", err.Error()}
		}
		k.ecKey = ek
	case KeyTypeSm2:
		// x509's SEC1 parser only recognizes the NIST named curves, so
		// SM2 keys carry their own minimal DER encoding (see sm2.go).
		ek, err := parseSm2PrivateKey(der)
		if err != nil {
			return &Error{"LoadPkcs1", err.Error()}
		}
		k.ecKey = ek
	default:
		return &Error{"LoadPkcs1", "key type does not have a PKCS#1 form"}
	}
	k.typ = kt
	return nil
}

// LoadPkcs1Base64 loads a base64-encoded key in any form LoadPkcs1
// accepts.
func (k *PrivateKey) LoadPkcs1Base64(s string, kt KeyType) error {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return &Error{"LoadPkcs1Base64", err.Error()}
	}
	return k.LoadPkcs1(der, kt)
}

// LoadPkcs8 loads a DER-encoded PKCS#8 key. If password is non-nil the
// DER is treated as an EncryptedPrivateKeyInfo and decrypted with
// youmark/pkcs8; otherwise it is parsed as a plain PKCS#8 blob with the
// standard library.
//
// kt disambiguates SM2 from EC: PKCS#8's ECPrivateKey field is wire-
// identical for both algorithms, so the caller (normally the enclosing
// certificate's SignatureType, via KeyTypeFromSignatureType) must say
// which this is.
func (k *PrivateKey) LoadPkcs8(der []byte, kt KeyType, password []byte) error {
	if k.loaded() {
		return errAlreadyLoaded("LoadPkcs8")
	}
	if kt == KeyTypeSm2 {
		sm2DER := der
		if password != nil {
			decrypted, err := decryptSm2Pkcs8(der, password)
			if err != nil {
				return &Error{"LoadPkcs8", err.Error()}
			}
			sm2DER = decrypted
		}
		ek, err := parseSm2PrivateKey(sm2DER)
		if err != nil {
			return &Error{"LoadPkcs8", err.Error()}
		}
		k.ecKey = ek
		k.typ = KeyTypeSm2
		return nil
	}
	var parsed any
	var err error
	if password != nil {
		parsed, err = pkcs8.ParsePKCS8PrivateKey(der, password)
	} else {
		parsed, err = x509.ParsePKCS8PrivateKey(der)
	}
	if err != nil {
		return &Error{"LoadPkcs8", err.Error()}
	}
	switch key := parsed.(type) {
	case *rsa.PrivateKey:
		if kt != KeyTypeRsa && kt != KeyTypeNone {
			return &Error{"LoadPkcs8", "key type mismatch: blob is RSA"}
		}
		k.rsaKey = key
		k.typ = KeyTypeRsa
	case *ecdsa.PrivateKey:
		switch kt {
		case KeyTypeSm2:
			k.ecKey = key
			k.typ = KeyTypeSm2
		case KeyTypeEc, KeyTypeNone:
			k.ecKey = key
			k.typ = KeyTypeEc
		default:
			return &Error{"LoadPkcs8", "key type mismatch: blob is EC-shaped"}
		}
	default:
		return &Error{"LoadPkcs8", "unsupported PKCS#8 key algorithm"}
	}
	return nil
}

// LoadRaw loads a raw HMAC secret. HMAC has no PKCS#1/PKCS#8 form.
func (k *PrivateKey) LoadRaw(secret []byte) error {
	if k.loaded() {
		return errAlreadyLoaded("LoadRaw")
	}
	k.hmacKey = append([]byte(nil), secret...)
	k.typ = KeyTypeHmac
	return nil
}

// SavePkcs1 encodes an RSA or EC key in its traditional PKCS#1/SEC1 DER
// form, and an SM2 key in this module's own DER encoding. HMAC keys have
// no PKCS#1 encoding.
func (k *PrivateKey) SavePkcs1() ([]byte, error) {
	switch k.typ {
	case KeyTypeRsa:
		return x509.MarshalPKCS1PrivateKey(k.rsaKey), nil
	case KeyTypeEc:
		der, err := x509.MarshalECPrivateKey(k.ecKey)
		if err != nil {
			return nil, &Error{"SavePkcs1", err.Error()}
		}
		return der, nil
	case KeyTypeSm2:
		return marshalSm2PrivateKey(k.ecKey)
	default:
		return nil, &Error{"SavePkcs1", "key type has no PKCS#1 form"}
	}
}

// SavePkcs8 encodes the key as PKCS#8, encrypted with password when
// non-nil.
func (k *PrivateKey) SavePkcs8(password []byte) ([]byte, error) {
	if !k.loaded() {
		return nil, errNotLoaded("SavePkcs8")
	}
	if k.typ == KeyTypeSm2 {
		der, err := marshalSm2PrivateKey(k.ecKey)
		if err != nil {
			return nil, &Error{"SavePkcs8", err.Error()}
		}
		if password == nil {
			return der, nil
		}
		enc, err := encryptSm2Pkcs8(der, password)
		if err != nil {
			return nil, &Error{"SavePkcs8", err.Error()}
		}
		return enc, nil
	}
	var signer any
	switch k.typ {
	case KeyTypeRsa:
		signer = k.rsaKey
	case KeyTypeEc:
		signer = k.ecKey
	default:
		return nil, &Error{"SavePkcs8", "key type has no PKCS#8 form"}
	}
	if password != nil {
		return pkcs8.MarshalPrivateKey(signer, password, nil)
	}
	der, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		return nil, &Error{"SavePkcs8", err.Error()}
	}
	return der, nil
}

// SaveRaw returns the raw HMAC secret. HMAC keys have no PKCS#1/PKCS#8
// encoding, so backends that persist keys to disk store this form
// directly.
func (k *PrivateKey) SaveRaw() ([]byte, error) {
	if k.typ != KeyTypeHmac {
		return nil, &Error{"SaveRaw", "only HMAC keys have a raw form"}
	}
	return append([]byte(nil), k.hmacKey...), nil
}

// GetPublicKey derives the PublicKey half of this key.
func (k *PrivateKey) GetPublicKey() (*PublicKey, error) {
	if !k.loaded() {
		return nil, errNotLoaded("GetPublicKey")
	}
	switch k.typ {
	case KeyTypeRsa:
		return newPublicKey(KeyTypeRsa, &k.rsaKey.PublicKey, nil), nil
	case KeyTypeEc, KeyTypeSm2:
		return newPublicKey(k.typ, &k.ecKey.PublicKey, nil), nil
	case KeyTypeHmac:
		return nil, &Error{"GetPublicKey", "HMAC keys have no public half"}
	default:
		return nil, errNotLoaded("GetPublicKey")
	}
}

// Decrypt decrypts an RSA-OAEP(SHA-256) ciphertext for an RSA key or a
// GM/T 0003 SM2 ciphertext for an SM2 key. Other key types have no
// defined decryption operation.
func (k *PrivateKey) Decrypt(ciphertext []byte) ([]byte, error) {
	switch k.typ {
	case KeyTypeRsa:
		pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.rsaKey, ciphertext, nil)
		if err != nil {
			return nil, &Error{"Decrypt", err.Error()}
		}
		return pt, nil
	case KeyTypeSm2:
		pt, err := sm2Decrypt(k.ecKey, ciphertext)
		if err != nil {
			return nil, &Error{"Decrypt", err.Error()}
		}
		return pt, nil
	default:
		return nil, &Error{"Decrypt", "only RSA and SM2 keys support decryption"}
	}
}

// Sign signs data, hashing it first with the key type's digest
// algorithm. HMAC signs with a keyed MAC rather than a hash+asymmetric
// signature.
func (k *PrivateKey) Sign(data []byte) ([]byte, error) {
	if !k.loaded() {
		return nil, errNotLoaded("Sign")
	}
	switch k.typ {
	case KeyTypeRsa:
		digest := sha256.Sum256(data)
		return rsa.SignPKCS1v15(rand.Reader, k.rsaKey, crypto.SHA256, digest[:])
	case KeyTypeEc:
		digest := sha256.Sum256(data)
		return ecdsa.SignASN1(rand.Reader, k.ecKey, digest[:])
	case KeyTypeSm2:
		sig, err := sm2Sign(k.ecKey, nil, data)
		if err != nil {
			return nil, &Error{"Sign", err.Error()}
		}
		return asn1.Marshal(struct{ R, S *big.Int }{sig.R, sig.S})
	case KeyTypeHmac:
		mac := hmac.New(sha256.New, k.hmacKey)
		mac.Write(data)
		return mac.Sum(nil), nil
	default:
		return nil, errNotLoaded("Sign")
	}
}
