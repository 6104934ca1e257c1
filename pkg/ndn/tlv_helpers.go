package ndn

import (
	"bytes"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

// writeTLV appends a Type-Length-Value element to b.
func writeTLV(b *bytes.Buffer, typ enc.TLNum, val []byte) {
	buf := make([]byte, typ.EncodingLength())
	typ.EncodeInto(buf)
	b.Write(buf)
	l := enc.TLNum(len(val))
	lbuf := make([]byte, l.EncodingLength())
	l.EncodeInto(lbuf)
	b.Write(lbuf)
	b.Write(val)
}

// writeTLVNat appends a Type-Length-Value element whose value is a
// NonNegativeInteger.
func writeTLVNat(b *bytes.Buffer, typ enc.TLNum, val uint64) {
	writeTLV(b, typ, enc.Nat(val).Bytes())
}

// writeTLVEmpty appends a boolean-style TLV with an empty value, used for
// flags like CanBePrefix and MustBeFresh.
func writeTLVEmpty(b *bytes.Buffer, typ enc.TLNum) {
	writeTLV(b, typ, nil)
}

// readTLV reads one Type-Length-Value element from r, returning its type
// and value. Names are returned type=enc.TypeName with the Name's own
// value bytes (i.e. one level deeper than a raw component TLV).
func readTLV(r enc.ParseReader) (enc.TLNum, []byte, error) {
	typ, err := enc.ReadTLNum(r)
	if err != nil {
		return 0, nil, err
	}
	l, err := enc.ReadTLNum(r)
	if err != nil {
		return 0, nil, err
	}
	val, err := r.ReadBuf(int(l))
	if err != nil {
		return 0, nil, err
	}
	buf := make([]byte, len(val))
	copy(buf, val)
	return typ, buf, nil
}

func prependTL(typ enc.TLNum, val []byte) []byte {
	var out bytes.Buffer
	writeTLV(&out, typ, val)
	return out.Bytes()
}
