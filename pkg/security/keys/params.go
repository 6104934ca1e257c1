package keys

import "fmt"

// KeyParams selects the algorithm and size for key generation, dispatched
// by GeneratePrivateKey.
type KeyParams struct {
	Type KeyType
	Size int // bits; must be 256 for Sm2 (fixed curve)
}

// RsaParams returns KeyParams for RSA key generation. bits is typically
// 2048-8192.
func RsaParams(bits int) KeyParams { return KeyParams{Type: KeyTypeRsa, Size: bits} }

// EcParams returns KeyParams for EC key generation. bits selects the
// curve: 224 (P-224), 256 (P-256), 384 (P-384) or 521 (P-521).
func EcParams(bits int) KeyParams { return KeyParams{Type: KeyTypeEc, Size: bits} }

// Sm2Params returns KeyParams for SM2 key generation (fixed 256-bit curve).
func Sm2Params() KeyParams { return KeyParams{Type: KeyTypeSm2, Size: 256} }

// HmacParams returns KeyParams for HMAC key generation. bits is typically
// 128-512.
func HmacParams(bits int) KeyParams { return KeyParams{Type: KeyTypeHmac, Size: bits} }

func (p KeyParams) validate() error {
	switch p.Type {
	case KeyTypeRsa:
		if p.Size < 2048 || p.Size > 8192 {
			return fmt.Errorf("keys: RSA key size %d out of range [2048, 8192]", p.Size)
		}
	case KeyTypeEc:
		switch p.Size {
		case 224, 256, 384, 521:
		default:
			return fmt.Errorf("keys: unsupported EC curve size %d", p.Size)
		}
	case KeyTypeSm2:
		if p.Size != 256 {
			return fmt.Errorf("keys: SM2 only supports the 256-bit curve")
		}
	case KeyTypeHmac:
		if p.Size < 8 {
			return fmt.Errorf("keys: HMAC key size %d too small", p.Size)
		}
	default:
		return fmt.Errorf("keys: cannot generate a key of type %v", p.Type)
	}
	return nil
}
