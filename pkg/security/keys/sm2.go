package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/subtle"
	"encoding/asn1"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"sync"
)

// sm2OID is the GM/T 0010-2012 object identifier for the SM2
// recommended curve (1.2.156.10197.1.301). x509's SEC1/PKIX marshaling
// only knows the NIST curves' OIDs, so SM2 keys carry their own
// minimal DER encodings below instead of reusing x509.MarshalECPrivateKey
// / x509.MarshalPKIXPublicKey.
var sm2OID = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 301}

type sm2PrivateKeyASN1 struct {
	Version    int
	PrivateKey []byte
	Curve      asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey  asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

type sm2PublicKeyASN1 struct {
	Algorithm struct {
		Algorithm asn1.ObjectIdentifier
		Curve     asn1.ObjectIdentifier
	}
	PublicKey asn1.BitString
}

func marshalSm2PrivateKey(key *ecdsa.PrivateKey) ([]byte, error) {
	params := key.Curve.Params()
	byteLen := (params.BitSize + 7) / 8
	priv := make([]byte, byteLen)
	key.D.FillBytes(priv)
	pub := elliptic.Marshal(key.Curve, key.X, key.Y)
	return asn1.Marshal(sm2PrivateKeyASN1{
		Version:    1,
		PrivateKey: priv,
		Curve:      sm2OID,
		PublicKey:  asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
}

func parseSm2PrivateKey(der []byte) (*ecdsa.PrivateKey, error) {
	var parsed sm2PrivateKeyASN1
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, err
	}
	curve := sm2Curve()
	d := new(big.Int).SetBytes(parsed.PrivateKey)
	priv := new(ecdsa.PrivateKey)
	priv.Curve = curve
	priv.D = d
	if len(parsed.PublicKey.Bytes) > 0 {
		priv.X, priv.Y = elliptic.Unmarshal(curve, parsed.PublicKey.Bytes)
	} else {
		priv.X, priv.Y = curve.ScalarBaseMult(d.Bytes())
	}
	return priv, nil
}

func marshalSm2PublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	raw := elliptic.Marshal(pub.Curve, pub.X, pub.Y)
	key := sm2PublicKeyASN1{PublicKey: asn1.BitString{Bytes: raw, BitLength: len(raw) * 8}}
	key.Algorithm.Algorithm = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1} // id-ecPublicKey
	key.Algorithm.Curve = sm2OID
	return asn1.Marshal(key)
}

func parseSm2PublicKey(der []byte) (*ecdsa.PublicKey, error) {
	var parsed sm2PublicKeyASN1
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, err
	}
	curve := sm2Curve()
	x, y := elliptic.Unmarshal(curve, parsed.PublicKey.Bytes)
	if x == nil {
		return nil, errors.New("keys: invalid SM2 public key point")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// sm2 provides the GB/T 32918 public-key algorithm over the SM2
// recommended curve. The curve shares Go's standard elliptic.Curve
// representation, but the signing equations differ from ECDSA (the
// ZA-prefixed digest and the r/s relations below), so crypto/ecdsa
// cannot be reused for Sign/Verify — only for key generation, which is
// a plain scalar-multiply independent of the signing equations.
//
// No repo in the retrieval pack vendors an SM2 implementation; see
// DESIGN.md.

var (
	sm2CurveOnce sync.Once
	sm2CurveVal  elliptic.Curve
)

func sm2Curve() elliptic.Curve {
	sm2CurveOnce.Do(func() {
		p, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
		n, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
		b, _ := new(big.Int).SetString("28E9FA9E9D9F5E344D5A9E4BCF6509A7F39789F515AB8F92DDBCBD414D940E93", 16)
		gx, _ := new(big.Int).SetString("32C4AE2C1F1981195F9904466A39C9948FE30BBFF2660BE1715A4589334C74C7", 16)
		gy, _ := new(big.Int).SetString("BC3736A2F4F6779C59BDCEE36B692153D0A9877CC62A474002DF32E52139F0A0", 16)
		sm2CurveVal = &elliptic.CurveParams{
			P:       p,
			N:       n,
			B:       b,
			Gx:      gx,
			Gy:      gy,
			BitSize: 256,
			Name:    "SM2-P256",
		}
	})
	return sm2CurveVal
}

// defaultSm2UID is the "1234567812345678" user identity used by the
// reference SM2 worked examples when the application supplies none.
var defaultSm2UID = []byte{0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38}

// sm2Za computes ZA = SM3(ENTLA || IDA || a || b || Gx || Gy || xA || yA).
func sm2Za(curve elliptic.Curve, uid []byte, pub *ecdsa.PublicKey) []byte {
	params := curve.Params()
	a := new(big.Int).Sub(params.P, big.NewInt(3)) // SM2 curve fixes a = p-3
	h := NewSm3()
	var entl [2]byte
	binary.BigEndian.PutUint16(entl[:], uint16(len(uid)*8))
	h.Write(entl[:])
	h.Write(uid)
	writeFieldElem(h, a, params.BitSize)
	writeFieldElem(h, params.B, params.BitSize)
	writeFieldElem(h, params.Gx, params.BitSize)
	writeFieldElem(h, params.Gy, params.BitSize)
	writeFieldElem(h, pub.X, params.BitSize)
	writeFieldElem(h, pub.Y, params.BitSize)
	return h.Sum(nil)
}

func writeFieldElem(w io.Writer, v *big.Int, bitSize int) {
	sz := (bitSize + 7) / 8
	buf := make([]byte, sz)
	v.FillBytes(buf)
	w.Write(buf)
}

// sm2Digest computes the e = SM3(ZA || message) digest that sm2Sign and
// sm2Verify operate on.
func sm2Digest(pub *ecdsa.PublicKey, uid, message []byte) []byte {
	if uid == nil {
		uid = defaultSm2UID
	}
	za := sm2Za(pub.Curve, uid, pub)
	h := NewSm3()
	h.Write(za)
	h.Write(message)
	return h.Sum(nil)
}

// sm2Signature is the (r, s) pair produced by sm2Sign.
type sm2Signature struct {
	R, S *big.Int
}

func sm2Sign(priv *ecdsa.PrivateKey, uid, message []byte) (*sm2Signature, error) {
	curve := priv.Curve
	params := curve.Params()
	e := new(big.Int).SetBytes(sm2Digest(&priv.PublicKey, uid, message))

	for {
		k, err := randFieldElement(curve, rand.Reader)
		if err != nil {
			return nil, err
		}
		x1, _ := curve.ScalarBaseMult(k.Bytes())
		r := new(big.Int).Add(e, x1)
		r.Mod(r, params.N)
		if r.Sign() == 0 {
			continue
		}
		rk := new(big.Int).Add(r, k)
		if rk.Cmp(params.N) == 0 {
			continue
		}

		dPlus1Inv := new(big.Int).Add(priv.D, big.NewInt(1))
		dPlus1Inv.ModInverse(dPlus1Inv, params.N)

		s := new(big.Int).Mul(r, priv.D)
		s.Sub(k, s)
		s.Mod(s, params.N)
		s.Mul(s, dPlus1Inv)
		s.Mod(s, params.N)
		if s.Sign() == 0 {
			continue
		}
		return &sm2Signature{R: r, S: s}, nil
	}
}

func sm2Verify(pub *ecdsa.PublicKey, uid, message []byte, sig *sm2Signature) bool {
	curve := pub.Curve
	params := curve.Params()
	one := big.NewInt(1)
	if sig.R.Cmp(one) < 0 || sig.R.Cmp(params.N) >= 0 {
		return false
	}
	if sig.S.Cmp(one) < 0 || sig.S.Cmp(params.N) >= 0 {
		return false
	}

	e := new(big.Int).SetBytes(sm2Digest(pub, uid, message))
	t := new(big.Int).Add(sig.R, sig.S)
	t.Mod(t, params.N)
	if t.Sign() == 0 {
		return false
	}

	x1, y1 := curve.ScalarBaseMult(sig.S.Bytes())
	x2, y2 := curve.ScalarMult(pub.X, pub.Y, t.Bytes())
	x, _ := curve.Add(x1, y1, x2, y2)

	r := new(big.Int).Add(e, x)
	r.Mod(r, params.N)
	return r.Cmp(sig.R) == 0
}

func randFieldElement(curve elliptic.Curve, reader io.Reader) (*big.Int, error) {
	params := curve.Params()
	n := new(big.Int).Sub(params.N, big.NewInt(1))
	k, err := rand.Int(reader, n)
	if err != nil {
		return nil, err
	}
	return k.Add(k, big.NewInt(1)), nil
}

func generateSm2Key() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(sm2Curve(), rand.Reader)
}

var errSm2CurveMismatch = errors.New("keys: key is not on the SM2 curve")

func fieldBytes(v *big.Int, curve elliptic.Curve) []byte {
	buf := make([]byte, (curve.Params().BitSize+7)/8)
	v.FillBytes(buf)
	return buf
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// sm2KDF derives klen bytes from z per GB/T 32918.4 §6.2: repeated
// SM3(z || counter) with a 4-byte big-endian counter starting at 1,
// concatenated and truncated to klen bytes.
func sm2KDF(z []byte, klen int) []byte {
	out := make([]byte, 0, klen+sm3DigestSize)
	var ct uint32 = 1
	for len(out) < klen {
		h := NewSm3()
		h.Write(z)
		var ctBytes [4]byte
		binary.BigEndian.PutUint32(ctBytes[:], ct)
		h.Write(ctBytes[:])
		out = h.Sum(out)
		ct++
	}
	return out[:klen]
}

// sm2Encrypt implements the GM/T 0003.4 / GB/T 32918.4 public-key
// encryption scheme: output is C1 (the ephemeral curve point,
// uncompressed) || C3 (an SM3 MAC over the shared secret and
// plaintext) || C2 (the plaintext masked by a KDF-derived keystream).
func sm2Encrypt(pub *ecdsa.PublicKey, plaintext []byte) ([]byte, error) {
	curve := pub.Curve
	for {
		k, err := randFieldElement(curve, rand.Reader)
		if err != nil {
			return nil, err
		}
		x1, y1 := curve.ScalarBaseMult(k.Bytes())
		x2, y2 := curve.ScalarMult(pub.X, pub.Y, k.Bytes())

		z := append(fieldBytes(x2, curve), fieldBytes(y2, curve)...)
		t := sm2KDF(z, len(plaintext))
		if allZero(t) {
			continue
		}

		c2 := make([]byte, len(plaintext))
		for i := range plaintext {
			c2[i] = plaintext[i] ^ t[i]
		}

		h := NewSm3()
		h.Write(fieldBytes(x2, curve))
		h.Write(plaintext)
		h.Write(fieldBytes(y2, curve))
		c3 := h.Sum(nil)

		c1 := elliptic.Marshal(curve, x1, y1)
		out := make([]byte, 0, len(c1)+len(c3)+len(c2))
		out = append(out, c1...)
		out = append(out, c3...)
		out = append(out, c2...)
		return out, nil
	}
}

// sm2Decrypt inverts sm2Encrypt, rejecting a ciphertext whose C3 MAC
// does not match the recomputed value.
func sm2Decrypt(priv *ecdsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	curve := priv.Curve
	pointLen := 2*((curve.Params().BitSize+7)/8) + 1
	if len(ciphertext) < pointLen+sm3DigestSize {
		return nil, errors.New("keys: sm2 ciphertext too short")
	}
	c1 := ciphertext[:pointLen]
	c3 := ciphertext[pointLen : pointLen+sm3DigestSize]
	c2 := ciphertext[pointLen+sm3DigestSize:]

	x1, y1 := elliptic.Unmarshal(curve, c1)
	if x1 == nil {
		return nil, errors.New("keys: invalid sm2 ciphertext point")
	}
	x2, y2 := curve.ScalarMult(x1, y1, priv.D.Bytes())

	z := append(fieldBytes(x2, curve), fieldBytes(y2, curve)...)
	t := sm2KDF(z, len(c2))
	if allZero(t) {
		return nil, errors.New("keys: sm2 decryption failed")
	}
	plaintext := make([]byte, len(c2))
	for i := range c2 {
		plaintext[i] = c2[i] ^ t[i]
	}

	h := NewSm3()
	h.Write(fieldBytes(x2, curve))
	h.Write(plaintext)
	h.Write(fieldBytes(y2, curve))
	u := h.Sum(nil)
	if subtle.ConstantTimeCompare(u, c3) != 1 {
		return nil, errors.New("keys: sm2 ciphertext failed integrity check")
	}
	return plaintext, nil
}
