package ndn

import (
	"bytes"
	"time"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

const validityTimeLayout = "20060102T150405"

// KeyLocator names the key (or carries a raw digest of it) used to
// produce a signature.
type KeyLocator struct {
	Name   enc.Name
	Digest []byte
}

func (kl *KeyLocator) encode() []byte {
	var body bytes.Buffer
	if kl.Name != nil {
		body.Write(kl.Name.Bytes())
	}
	if kl.Digest != nil {
		writeTLV(&body, TypeKeyDigest, kl.Digest)
	}
	var out bytes.Buffer
	writeTLV(&out, TypeKeyLocator, body.Bytes())
	return out.Bytes()
}

// decodeKeyLocator decodes the KeyLocator sub-elements from its inner
// value (i.e. with the KeyLocator TLV's own Type-Length already stripped).
func decodeKeyLocator(inner []byte) (*KeyLocator, error) {
	r := enc.NewBufferReader(inner)
	kl := &KeyLocator{}
	for r.Pos() < r.Length() {
		typ, val, err := readTLV(r)
		if err != nil {
			return nil, err
		}
		switch typ {
		case enc.TypeName:
			name, err := enc.ReadName(enc.NewBufferReader(val))
			if err != nil {
				return nil, err
			}
			kl.Name = name
		case TypeKeyDigest:
			kl.Digest = val
		}
	}
	return kl, nil
}

// ValidityPeriod is the NotBefore/NotAfter window carried in a
// certificate's SignatureInfo.
type ValidityPeriod struct {
	NotBefore time.Time
	NotAfter  time.Time
}

func (vp *ValidityPeriod) encode() []byte {
	var body bytes.Buffer
	writeTLV(&body, TypeNotBefore, []byte(vp.NotBefore.UTC().Format(validityTimeLayout)))
	writeTLV(&body, TypeNotAfter, []byte(vp.NotAfter.UTC().Format(validityTimeLayout)))
	var out bytes.Buffer
	writeTLV(&out, TypeValidityPeriod, body.Bytes())
	return out.Bytes()
}

// decodeValidityPeriod decodes NotBefore/NotAfter from the ValidityPeriod's
// inner value (Type-Length already stripped).
func decodeValidityPeriod(inner []byte) (*ValidityPeriod, error) {
	r := enc.NewBufferReader(inner)
	vp := &ValidityPeriod{}
	for r.Pos() < r.Length() {
		typ, val, err := readTLV(r)
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeNotBefore:
			t, err := time.Parse(validityTimeLayout, string(val))
			if err != nil {
				return nil, enc.ErrFormat{Msg: "ndn: invalid NotBefore: " + err.Error()}
			}
			vp.NotBefore = t
		case TypeNotAfter:
			t, err := time.Parse(validityTimeLayout, string(val))
			if err != nil {
				return nil, enc.ErrFormat{Msg: "ndn: invalid NotAfter: " + err.Error()}
			}
			vp.NotAfter = t
		}
	}
	return vp, nil
}

// SignatureInfoWire is the wire-level SignatureInfo (or
// InterestSignatureInfo, when isInterest is set) carried on a packet.
type SignatureInfoWire struct {
	SigType    SigType
	KeyLocator *KeyLocator
	Validity   *ValidityPeriod

	// Interest-only fields (Packet Format v0.3 signed Interests).
	Nonce      []byte
	SigTime    *time.Time
	SigSeqNum  *uint64
	isInterest bool
}

func (si *SignatureInfoWire) typ() enc.TLNum {
	if si.isInterest {
		return TypeInterestSigInfo
	}
	return TypeSignatureInfo
}

func (si *SignatureInfoWire) encode() []byte {
	var body bytes.Buffer
	writeTLVNat(&body, TypeSignatureType, uint64(si.SigType))
	if si.KeyLocator != nil {
		body.Write(si.KeyLocator.encode())
	}
	if si.isInterest {
		if si.Nonce != nil {
			writeTLV(&body, TypeSignatureNonce, si.Nonce)
		}
		if si.SigTime != nil {
			writeTLVNat(&body, TypeSignatureTime, uint64(si.SigTime.UnixMilli()))
		}
		if si.SigSeqNum != nil {
			writeTLVNat(&body, TypeSignatureSeqNum, *si.SigSeqNum)
		}
	}
	if si.Validity != nil {
		body.Write(si.Validity.encode())
	}
	var out bytes.Buffer
	writeTLV(&out, si.typ(), body.Bytes())
	return out.Bytes()
}

func decodeSignatureInfo(buf []byte, isInterest bool) (*SignatureInfoWire, error) {
	r := enc.NewBufferReader(buf)
	si := &SignatureInfoWire{isInterest: isInterest}
	for r.Pos() < r.Length() {
		typ, val, err := readTLV(r)
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeSignatureType:
			n, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			si.SigType = SigType(n)
		case TypeKeyLocator:
			kl, err := decodeKeyLocator(val)
			if err != nil {
				return nil, err
			}
			si.KeyLocator = kl
		case TypeValidityPeriod:
			vp, err := decodeValidityPeriod(val)
			if err != nil {
				return nil, err
			}
			si.Validity = vp
		case TypeSignatureNonce:
			si.Nonce = val
		case TypeSignatureTime:
			n, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			t := time.UnixMilli(int64(n)).UTC()
			si.SigTime = &t
		case TypeSignatureSeqNum:
			n, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			seq := uint64(n)
			si.SigSeqNum = &seq
		}
	}
	return si, nil
}
