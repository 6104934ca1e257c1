// Package ndn defines the packet-level interfaces (Data, Interest,
// Signature, Signer) that the security core signs, verifies and carries
// key material over.
package ndn

import (
	"time"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// SigType is the on-wire SignatureType value carried in SignatureInfo.
type SigType uint64

// SignatureType values, bit-exact with the NDN packet specification. The
// Sm3WithSm2 value is an out-of-spec extension used by this module to
// carry SM2/SM3 signatures, since the wire format has no assigned code
// point for it.
const (
	SignatureDigestSha256   SigType = 0
	SignatureSha256WithRsa  SigType = 1
	SignatureSha256WithEcdsa SigType = 3
	SignatureHmacWithSha256 SigType = 4
	SignatureSm3WithSm2     SigType = 5
	SignatureEmptyTest      SigType = 200
)

// Signature is the read-side view of a packet's signature, whatever
// concrete wire format (Data SignatureInfo, Interest SignatureInfo/Value,
// or the legacy component-appended form) produced it.
type Signature interface {
	SigType() SigType
	KeyName() enc.Name
	SigNonce() []byte
	SigTime() *time.Time
	SigSeqNum() *uint64
	Validity() (notBefore, notAfter *time.Time)
	SigValue() []byte
}

// Signer is implemented by everything capable of producing a signature
// over a packet's signed portion: TPM-backed keys, the bare-digest
// pseudo-signer and HMAC signers.
type Signer interface {
	// SigInfo returns the SignatureInfo to place on the packet before
	// the signed portion is computed.
	SigInfo() (*SigConfig, error)
	// EstimateSize returns an upper bound on the signature value size,
	// used to size the encoding buffer before signing.
	EstimateSize() uint
	// ComputeSigValue signs the covered wire and returns the signature bytes.
	ComputeSigValue(covered enc.Wire) ([]byte, error)
}

// SigConfig is the caller-facing configuration of a signature about to be
// produced; Signer.SigInfo returns one, and the packet encoder turns it
// into the wire SignatureInfo block.
type SigConfig struct {
	Type      SigType
	KeyName   enc.Name
	Nonce     []byte
	SigTime   *time.Time
	SeqNum    *uint64
	NotBefore *time.Time
	NotAfter  *time.Time
}
