// Package mgmt carries the plain TLV-container datasets NFD-style
// management protocols publish (forwarder status, FIB/RIB/face status):
// collaborators of the security core, not part of it — this package
// has no dependency on keychain, pib, tpm or transform. It encodes and
// decodes the dataset wire formats only; routing, forwarding and the
// status-dataset segmenter that would serve these over a network are
// out of scope.
package mgmt

import (
	"fmt"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// field is one decoded top-level TLV element of a dataset Content.
type field struct {
	typ enc.TLNum
	val []byte
}

func readFields(buf []byte) ([]field, error) {
	var fields []field
	r := enc.NewBufferReader(enc.Buffer(buf))
	for r.Pos() < r.Length() {
		typ, err := enc.ReadTLNum(r)
		if err != nil {
			return nil, fmt.Errorf("mgmt: reading field type: %w", err)
		}
		length, err := enc.ReadTLNum(r)
		if err != nil {
			return nil, fmt.Errorf("mgmt: reading field length: %w", err)
		}
		val, err := r.ReadBuf(int(length))
		if err != nil {
			return nil, fmt.Errorf("mgmt: reading field value: %w", err)
		}
		fields = append(fields, field{typ: typ, val: val})
	}
	return fields, nil
}

func appendNNI(buf []byte, typ enc.TLNum, v uint64) []byte {
	return appendBytes(buf, typ, enc.Nat(v).Bytes())
}

func appendBytes(buf []byte, typ enc.TLNum, val []byte) []byte {
	b := make(enc.Buffer, typ.EncodingLength())
	typ.EncodeInto(b)
	buf = append(buf, b...)
	l := enc.TLNum(len(val))
	b = make(enc.Buffer, l.EncodingLength())
	l.EncodeInto(b)
	buf = append(buf, b...)
	return append(buf, val...)
}

func appendString(buf []byte, typ enc.TLNum, s string) []byte {
	return appendBytes(buf, typ, []byte(s))
}

func nni(val []byte) (uint64, error) {
	n, err := enc.ParseNat(enc.Buffer(val))
	if err != nil {
		return 0, fmt.Errorf("mgmt: decoding NonNegativeInteger: %w", err)
	}
	return uint64(n), nil
}
