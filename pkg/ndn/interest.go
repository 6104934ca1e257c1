package ndn

import (
	"bytes"
	"crypto/sha256"
	"time"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// Interest is a decoded (or about-to-be-encoded) Interest packet.
//
// Two signing conventions are supported, selected by LegacyFormat:
//   - Packet Format v0.3 (default): SignatureInfo/SignatureValue are
//     carried as top-level elements alongside ApplicationParameters, and
//     the Name's last component is a ParametersSha256Digest placeholder.
//   - Legacy (NDN Packet Format v0.2-era) signed Interests: SignatureInfo
//     and SignatureValue are appended as trailing generic Name components.
type Interest struct {
	Name                 enc.Name
	CanBePrefix          bool
	MustBeFresh          bool
	InterestLifetime     *time.Duration
	ApplicationParameters []byte
	LegacyFormat         bool

	sigInfo  *SignatureInfoWire
	sigValue []byte
}

// SetSignatureInfo installs the SignatureInfo to be signed over.
func (in *Interest) SetSignatureInfo(cfg *SigConfig) {
	in.sigInfo = &SignatureInfoWire{
		SigType:    cfg.Type,
		Nonce:      cfg.Nonce,
		SigTime:    cfg.SigTime,
		SigSeqNum:  cfg.SeqNum,
		isInterest: !in.LegacyFormat,
	}
	if cfg.KeyName != nil {
		in.sigInfo.KeyLocator = &KeyLocator{Name: cfg.KeyName}
	}
}

func (in *Interest) SetSignatureValue(v []byte) { in.sigValue = v }

// Signature returns the Interest's signature, or nil if it is unsigned.
func (in *Interest) Signature() Signature {
	if in.sigInfo == nil {
		return nil
	}
	return &wireSignature{info: in.sigInfo, value: in.sigValue}
}

// nameWithoutParamsDigest returns the Name with a trailing
// ParametersSha256Digest placeholder component removed, if present.
func (in *Interest) nameWithoutParamsDigest() enc.Name {
	if len(in.Name) == 0 {
		return in.Name
	}
	last := in.Name[len(in.Name)-1]
	if last.Typ == TypeParametersSha256DigestComponent {
		return in.Name[:len(in.Name)-1]
	}
	return in.Name
}

// SignedPortion returns the wire range a Signer/Verifier must cover.
func (in *Interest) SignedPortion() (enc.Wire, error) {
	if in.sigInfo == nil {
		return nil, enc.ErrFormat{Msg: "ndn.Interest: SignatureInfo not set"}
	}
	if in.LegacyFormat {
		// Legacy signed Interests cover the name (including the
		// SignatureInfo component about to be appended) up to, but
		// excluding, the SignatureValue component.
		name := in.nameWithoutParamsDigest().Append(infoAsComponent(in.sigInfo))
		buf := make([]byte, name.EncodingLength())
		name.EncodeInto(buf)
		return enc.Wire{buf}, nil
	}
	var w bytes.Buffer
	w.Write(in.nameWithoutParamsDigest().Bytes())
	writeTLV(&w, TypeApplicationParameters, in.ApplicationParameters)
	w.Write(in.sigInfo.encode())
	return enc.Wire{w.Bytes()}, nil
}

// Encode produces the fully wire-encoded Interest packet.
func (in *Interest) Encode() ([]byte, error) {
	if in.sigInfo == nil || in.sigValue == nil {
		return nil, enc.ErrFormat{Msg: "ndn.Interest: not signed"}
	}
	var body bytes.Buffer
	if in.LegacyFormat {
		name := in.nameWithoutParamsDigest()
		name = name.Append(infoAsComponent(in.sigInfo), valueAsComponent(in.sigValue))
		body.Write(name.Bytes())
	} else {
		name := in.nameWithoutParamsDigest()
		digest := paramsDigest(in.ApplicationParameters, in.sigInfo.encode(), in.sigValue)
		name = name.Append(enc.Component{Typ: TypeParametersSha256DigestComponent, Val: digest})
		body.Write(name.Bytes())
	}
	if in.CanBePrefix {
		writeTLVEmpty(&body, TypeCanBePrefix)
	}
	if in.MustBeFresh {
		writeTLVEmpty(&body, TypeMustBeFresh)
	}
	if in.InterestLifetime != nil {
		writeTLVNat(&body, TypeInterestLifetime, uint64(in.InterestLifetime.Milliseconds()))
	}
	if !in.LegacyFormat {
		writeTLV(&body, TypeApplicationParameters, in.ApplicationParameters)
		body.Write(in.sigInfo.encode())
		writeTLV(&body, TypeInterestSigValue, in.sigValue)
	}
	var out bytes.Buffer
	writeTLV(&out, TypeInterest, body.Bytes())
	return out.Bytes(), nil
}

func infoAsComponent(si *SignatureInfoWire) enc.Component {
	return enc.Component{Typ: TypeGeneric, Val: si.encode()}
}

func valueAsComponent(v []byte) enc.Component {
	var w bytes.Buffer
	writeTLV(&w, TypeSignatureValue, v)
	return enc.Component{Typ: TypeGeneric, Val: w.Bytes()}
}

func paramsDigest(params, sigInfo, sigValue []byte) []byte {
	h := sha256.New()
	h.Write(params)
	h.Write(sigInfo)
	var sv bytes.Buffer
	writeTLV(&sv, TypeInterestSigValue, sigValue)
	h.Write(sv.Bytes())
	return h.Sum(nil)
}
