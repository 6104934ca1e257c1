package enc

import (
	"io"
	"strings"

	"github.com/cespare/xxhash"
)

// TypeName is the TLV type of an encoded Name.
const TypeName TLNum = 0x07

// Name is an ordered sequence of opaque, typed components. It is the
// identifier for everything in this module: identities, keys and
// certificates are all named.
type Name []Component

func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range n {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}

// EncodingLength is the encoded length of the name **excluding** the outer
// Type-Length header; use Bytes to get the fully encoded TLV.
func (n Name) EncodingLength() int {
	l := 0
	for _, c := range n {
		l += c.EncodingLength()
	}
	return l
}

func (n Name) EncodeInto(buf Buffer) int {
	pos := 0
	for _, c := range n {
		pos += c.EncodeInto(buf[pos:])
	}
	return pos
}

// Bytes returns the name TLV-encoded, including the Name Type-Length header.
func (n Name) Bytes() []byte {
	l := n.EncodingLength()
	buf := make([]byte, TypeName.EncodingLength()+TLNum(l).EncodingLength()+l)
	p1 := TypeName.EncodeInto(buf)
	p2 := TLNum(l).EncodeInto(buf[p1:])
	n.EncodeInto(buf[p1+p2:])
	return buf
}

// Clone returns a deep copy of the name.
func (n Name) Clone() Name {
	ret := make(Name, len(n))
	for i, c := range n {
		ret[i] = c.Clone()
	}
	return ret
}

// Append returns a new name with the given components appended. The
// receiver is not modified.
func (n Name) Append(comps ...Component) Name {
	ret := make(Name, len(n)+len(comps))
	copy(ret, n)
	copy(ret[len(n):], comps)
	return ret
}

// AppendVersion appends a version component.
func (n Name) AppendVersion(v uint64) Name { return n.Append(NewVersionComponent(v)) }

// AppendSegment appends a segment component.
func (n Name) AppendSegment(seg uint64) Name { return n.Append(NewSegmentComponent(seg)) }

// AppendGeneric appends a generic (text) component.
func (n Name) AppendGeneric(s string) Name {
	return n.Append(NewStringComponent(TypeGenericNameComponent, s))
}

func (n Name) Compare(rhs Name) int {
	for i := 0; i < min(len(n), len(rhs)); i++ {
		if c := n[i].Compare(rhs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(rhs):
		return -1
	case len(n) > len(rhs):
		return 1
	default:
		return 0
	}
}

func (n Name) Equal(rhs Name) bool {
	if len(n) != len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsPrefix reports whether n is a (non-strict) prefix of rhs.
func (n Name) IsPrefix(rhs Name) bool {
	if len(n) > len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsStrictPrefix reports whether n is a proper prefix of rhs, i.e. rhs
// extends n with at least one more component. This is the relation the
// PIB enforces between an Identity name and its Key names.
func (n Name) IsStrictPrefix(rhs Name) bool {
	return len(n) < len(rhs) && n.IsPrefix(rhs)
}

// Hash returns a 64-bit xxhash of the name's encoded components. The
// in-memory PIB/TPM back-ends key their maps by String, not by Hash.
func (n Name) Hash() uint64 {
	h := xxhash.New()
	for _, c := range n {
		h.Write(c.Bytes())
	}
	return h.Sum64()
}

// ReadName decodes a Name from r, reading until r is exhausted. Used to
// decode the value portion of a Name TLV once the outer Type-Length has
// already been consumed.
func ReadName(r ParseReader) (Name, error) {
	ret := make(Name, 0, 4)
	for {
		c, err := ReadComponent(r)
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
}

// NameFromBytes decodes a fully TLV-encoded Name (including its Type-Length header).
func NameFromBytes(buf []byte) (Name, error) {
	r := NewBufferReader(buf)
	t, err := ReadTLNum(r)
	if err != nil {
		return nil, err
	}
	if t != TypeName {
		return nil, ErrFormat{"enc.NameFromBytes: input is not a Name"}
	}
	l, err := ReadTLNum(r)
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	start := r.Pos()
	inner, err := r.ReadBuf(int(l))
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	_ = start
	return ReadName(NewBufferReader(inner))
}

// NameFromStr parses a Name from its URI representation, e.g. "/a/b/35=c".
func NameFromStr(s string) (Name, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	ret := make(Name, len(parts))
	for i, p := range parts {
		c, err := componentFromStr(p)
		if err != nil {
			return nil, err
		}
		ret[i] = c
	}
	return ret, nil
}

func componentFromStr(s string) (Component, error) {
	typ := TypeGenericNameComponent
	val := s
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		n, err := parseUintStrict(s[:idx])
		if err != nil {
			return Component{}, ErrFormat{"enc: invalid component type in " + s}
		}
		typ = TLNum(n)
		val = s[idx+1:]
	}
	buf := make([]byte, 0, len(val))
	for i := 0; i < len(val); i++ {
		if val[i] == '%' && i+2 < len(val) {
			b, err := parseHexByte(val[i+1], val[i+2])
			if err != nil {
				return Component{}, err
			}
			buf = append(buf, b)
			i += 2
		} else {
			buf = append(buf, val[i])
		}
	}
	return Component{Typ: typ, Val: buf}, nil
}

func parseUintStrict(s string) (uint64, error) {
	var x uint64
	if s == "" {
		return 0, ErrFormat{"enc: empty integer"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrFormat{"enc: not an integer: " + s}
		}
		x = x*10 + uint64(s[i]-'0')
	}
	return x, nil
}

func parseHexByte(hi, lo byte) (byte, error) {
	h, err1 := hexDigit(hi)
	l, err2 := hexDigit(lo)
	if err1 != nil || err2 != nil {
		return 0, ErrFormat{"enc: invalid percent-encoding"}
	}
	return h<<4 | l, nil
}

func hexDigit(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, ErrFormat{"enc: invalid hex digit"}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
