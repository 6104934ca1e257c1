// Package keys implements PrivateKey and PublicKey: the load/save/sign/
// verify/encrypt/decrypt/derive operations that ride on top of Go's
// standard crypto primitives (and, for SM2/SM3, this module's own
// implementation — no example in the retrieval pack ships a national-
// standard crypto library, see DESIGN.md).
package keys

import (
	"fmt"

	"github.com/named-data/ndn-keychain/pkg/ndn"
)

// KeyType tags the algorithm family of a key. SM2 shares its PKCS#8
// encoding with plain EC/ECDSA and can only be told apart by this
// out-of-band tag (see DigestAlgorithm and the SafeBag import algorithm
// in package keychain).
type KeyType int

const (
	KeyTypeNone KeyType = iota
	KeyTypeRsa
	KeyTypeEc
	KeyTypeSm2
	KeyTypeHmac
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeRsa:
		return "RSA"
	case KeyTypeEc:
		return "EC"
	case KeyTypeSm2:
		return "SM2"
	case KeyTypeHmac:
		return "HMAC"
	default:
		return "NONE"
	}
}

// DigestAlgorithm selects the hash used by a Signer/Verifier filter.
type DigestAlgorithm int

const (
	DigestNone DigestAlgorithm = iota
	DigestSha256
	DigestSm3
)

// SignatureTypeFor returns the on-wire SignatureType for a (KeyType,
// DigestAlgorithm) pair. SM2 keys always produce Sm3WithSm2 regardless of
// the requested digest, matching PrivateKey.Sign's forced-SM3 behavior.
func SignatureTypeFor(kt KeyType, da DigestAlgorithm) (ndn.SigType, error) {
	switch kt {
	case KeyTypeRsa:
		return ndn.SignatureSha256WithRsa, nil
	case KeyTypeEc:
		return ndn.SignatureSha256WithEcdsa, nil
	case KeyTypeSm2:
		return ndn.SignatureSm3WithSm2, nil
	case KeyTypeHmac:
		return ndn.SignatureHmacWithSha256, nil
	case KeyTypeNone:
		if da == DigestSha256 {
			return ndn.SignatureDigestSha256, nil
		}
		return 0, fmt.Errorf("keys: no signature type for digest-only key with digest %v", da)
	default:
		return 0, fmt.Errorf("keys: unknown key type %v", kt)
	}
}

// KeyTypeFromSignatureType is the authoritative mapping used by SafeBag
// import: the enclosing certificate's signature type, not the raw key
// blob, decides whether an EC-shaped blob is EC or SM2.
func KeyTypeFromSignatureType(st ndn.SigType) (KeyType, error) {
	switch st {
	case ndn.SignatureSha256WithRsa:
		return KeyTypeRsa, nil
	case ndn.SignatureSha256WithEcdsa:
		return KeyTypeEc, nil
	case ndn.SignatureHmacWithSha256:
		return KeyTypeHmac, nil
	case ndn.SignatureSm3WithSm2:
		return KeyTypeSm2, nil
	default:
		return KeyTypeNone, fmt.Errorf("keys: signature type %d has no associated key type", st)
	}
}

// Error is the error type returned by load/save/generate/encrypt/decrypt
// failures in this package, mirroring the PrivateKey::Error / PublicKey::Error
// taxonomy from the reference design.
type Error struct {
	Op  string
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("keys: %s: %s", e.Op, e.Msg) }

func errAlreadyLoaded(op string) error { return &Error{op, "a key is already loaded"} }
func errNotLoaded(op string) error     { return &Error{op, "no key is loaded"} }
