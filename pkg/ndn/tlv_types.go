package ndn

import "github.com/named-data/ndn-keychain/pkg/enc"

// TLV type numbers for Data, Interest and their common sub-elements, per
// the NDN Packet Format v0.3 specification.
const (
	TypeData    enc.TLNum = 0x06
	TypeName    enc.TLNum = 0x07
	TypeGeneric enc.TLNum = 0x08

	TypeMetaInfo        enc.TLNum = 0x14
	TypeContent         enc.TLNum = 0x15
	TypeSignatureInfo   enc.TLNum = 0x16
	TypeSignatureValue  enc.TLNum = 0x17
	TypeContentType     enc.TLNum = 0x18
	TypeFreshnessPeriod enc.TLNum = 0x19
	TypeFinalBlockID    enc.TLNum = 0x1a
	TypeSignatureType   enc.TLNum = 0x1b
	TypeKeyLocator      enc.TLNum = 0x1c
	TypeKeyDigest       enc.TLNum = 0x1d

	TypeInterest              enc.TLNum = 0x05
	TypeCanBePrefix           enc.TLNum = 0x21
	TypeMustBeFresh           enc.TLNum = 0x12
	TypeInterestLifetime      enc.TLNum = 0x0c
	TypeHopLimit              enc.TLNum = 0x22
	TypeApplicationParameters enc.TLNum = 0x24

	TypeSignatureNonce   enc.TLNum = 0x26
	TypeSignatureTime    enc.TLNum = 0x28
	TypeSignatureSeqNum  enc.TLNum = 0x2a
	TypeInterestSigInfo  enc.TLNum = 0x2c
	TypeInterestSigValue enc.TLNum = 0x2e

	TypeValidityPeriod enc.TLNum = 0xfd
	TypeNotBefore      enc.TLNum = 0xfe
	TypeNotAfter       enc.TLNum = 0xff

	TypeParametersSha256DigestComponent = enc.TypeParametersSha256DigestComponent
)

// ContentTypeKey is the MetaInfo ContentType value used for certificates.
const ContentTypeKey uint64 = 2
