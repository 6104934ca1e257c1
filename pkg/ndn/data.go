package ndn

import (
	"bytes"
	"time"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// MetaInfo carries a Data packet's content type, freshness and final
// block marker.
type MetaInfo struct {
	ContentType     *uint64
	FreshnessPeriod *time.Duration
	FinalBlockID    *enc.Component
}

func (m *MetaInfo) encode() []byte {
	var body bytes.Buffer
	if m.ContentType != nil {
		writeTLVNat(&body, TypeContentType, *m.ContentType)
	}
	if m.FreshnessPeriod != nil {
		writeTLVNat(&body, TypeFreshnessPeriod, uint64(m.FreshnessPeriod.Milliseconds()))
	}
	if m.FinalBlockID != nil {
		writeTLV(&body, TypeFinalBlockID, m.FinalBlockID.Bytes())
	}
	var out bytes.Buffer
	writeTLV(&out, TypeMetaInfo, body.Bytes())
	return out.Bytes()
}

func decodeMetaInfo(inner []byte) (*MetaInfo, error) {
	r := enc.NewBufferReader(inner)
	m := &MetaInfo{}
	for r.Pos() < r.Length() {
		typ, val, err := readTLV(r)
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeContentType:
			n, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			v := uint64(n)
			m.ContentType = &v
		case TypeFreshnessPeriod:
			n, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			d := time.Duration(n) * time.Millisecond
			m.FreshnessPeriod = &d
		case TypeFinalBlockID:
			c, err := enc.ComponentFromBytes(val)
			if err != nil {
				return nil, err
			}
			m.FinalBlockID = &c
		}
	}
	return m, nil
}

// Data is a decoded (or about-to-be-encoded) Data packet.
type Data struct {
	Name     enc.Name
	MetaInfo MetaInfo
	Content  []byte

	sigInfo  *SignatureInfoWire
	sigValue []byte
}

// SetSignatureInfo installs the SignatureInfo that will be included in
// the signed portion when Encode is called. Called by the KeyChain
// before signing.
func (d *Data) SetSignatureInfo(cfg *SigConfig) {
	d.sigInfo = &SignatureInfoWire{
		SigType: cfg.Type,
		Validity: func() *ValidityPeriod {
			if cfg.NotBefore == nil || cfg.NotAfter == nil {
				return nil
			}
			return &ValidityPeriod{NotBefore: *cfg.NotBefore, NotAfter: *cfg.NotAfter}
		}(),
	}
	if cfg.KeyName != nil {
		d.sigInfo.KeyLocator = &KeyLocator{Name: cfg.KeyName}
	}
}

// SetSignatureValue installs the signature bytes produced by a Signer.
func (d *Data) SetSignatureValue(v []byte) { d.sigValue = v }

// SignedPortion returns the Name+MetaInfo+Content+SignatureInfo wire
// range that a Signer must sign and a Verifier must check.
func (d *Data) SignedPortion() (enc.Wire, error) {
	if d.sigInfo == nil {
		return nil, enc.ErrFormat{Msg: "ndn.Data: SignatureInfo not set"}
	}
	var w bytes.Buffer
	w.Write(d.Name.Bytes())
	w.Write(d.MetaInfo.encode())
	writeTLV(&w, TypeContent, d.Content)
	w.Write(d.sigInfo.encode())
	return enc.Wire{w.Bytes()}, nil
}

// Encode produces the fully wire-encoded Data packet. SetSignatureInfo
// and SetSignatureValue must have been called first.
func (d *Data) Encode() ([]byte, error) {
	if d.sigInfo == nil || d.sigValue == nil {
		return nil, enc.ErrFormat{Msg: "ndn.Data: not signed"}
	}
	signed, err := d.SignedPortion()
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	body.Write(signed.Join())
	writeTLV(&body, TypeSignatureValue, d.sigValue)
	var out bytes.Buffer
	writeTLV(&out, TypeData, body.Bytes())
	return out.Bytes(), nil
}

// Signature returns the wire-level Signature view of this Data packet.
func (d *Data) Signature() Signature {
	if d.sigInfo == nil {
		return nil
	}
	return &wireSignature{info: d.sigInfo, value: d.sigValue}
}

// ReadData decodes a fully wire-encoded Data packet.
func ReadData(r enc.ParseReader) (*Data, error) {
	typ, val, err := readTLV(r)
	if err != nil {
		return nil, err
	}
	if typ != TypeData {
		return nil, enc.ErrFormat{Msg: "ndn.ReadData: not a Data packet"}
	}
	inner := enc.NewBufferReader(val)
	d := &Data{}
	for inner.Pos() < inner.Length() {
		start := inner.Pos()
		etyp, eval, err := readTLV(inner)
		if err != nil {
			return nil, err
		}
		switch etyp {
		case enc.TypeName:
			name, err := enc.ReadName(enc.NewBufferReader(eval))
			if err != nil {
				return nil, err
			}
			d.Name = name
		case TypeMetaInfo:
			m, err := decodeMetaInfo(eval)
			if err != nil {
				return nil, err
			}
			d.MetaInfo = *m
		case TypeContent:
			d.Content = eval
		case TypeSignatureInfo:
			si, err := decodeSignatureInfo(eval, false)
			if err != nil {
				return nil, err
			}
			d.sigInfo = si
		case TypeSignatureValue:
			d.sigValue = eval
		}
		_ = start
	}
	return d, nil
}

// DataFromBytes decodes a Data packet from a byte slice.
func DataFromBytes(buf []byte) (*Data, error) {
	return ReadData(enc.NewBufferReader(buf))
}

type wireSignature struct {
	info  *SignatureInfoWire
	value []byte
}

func (s *wireSignature) SigType() SigType { return s.info.SigType }
func (s *wireSignature) KeyName() enc.Name {
	if s.info.KeyLocator == nil {
		return nil
	}
	return s.info.KeyLocator.Name
}
func (s *wireSignature) SigNonce() []byte     { return s.info.Nonce }
func (s *wireSignature) SigTime() *time.Time  { return s.info.SigTime }
func (s *wireSignature) SigSeqNum() *uint64   { return s.info.SigSeqNum }
func (s *wireSignature) SigValue() []byte     { return s.value }
func (s *wireSignature) Validity() (notBefore, notAfter *time.Time) {
	if s.info.Validity == nil {
		return nil, nil
	}
	return &s.info.Validity.NotBefore, &s.info.Validity.NotAfter
}
