package enc

import (
	"bytes"
	"fmt"
	"strconv"
)

// Name component type numbers, per the NDN naming conventions.
const (
	TypeInvalidComponent                TLNum = 0x00
	TypeImplicitSha256DigestComponent   TLNum = 0x01
	TypeParametersSha256DigestComponent TLNum = 0x02
	TypeGenericNameComponent            TLNum = 0x08
	TypeKeywordNameComponent            TLNum = 0x20
	TypeSegmentNameComponent            TLNum = 0x32
	TypeByteOffsetNameComponent         TLNum = 0x34
	TypeVersionNameComponent            TLNum = 0x36
	TypeTimestampNameComponent          TLNum = 0x38
	TypeSequenceNumNameComponent        TLNum = 0x3a
)

// Component is a single opaque, typed name component.
type Component struct {
	Typ TLNum
	Val []byte
}

func (c Component) Length() int { return len(c.Val) }

func (c Component) EncodingLength() int {
	return c.Typ.EncodingLength() + TLNum(len(c.Val)).EncodingLength() + len(c.Val)
}

func (c Component) EncodeInto(buf Buffer) int {
	p1 := c.Typ.EncodeInto(buf)
	p2 := TLNum(len(c.Val)).EncodeInto(buf[p1:])
	copy(buf[p1+p2:], c.Val)
	return p1 + p2 + len(c.Val)
}

func (c Component) Bytes() []byte {
	buf := make([]byte, c.EncodingLength())
	c.EncodeInto(buf)
	return buf
}

func (c Component) Clone() Component {
	val := make([]byte, len(c.Val))
	copy(val, c.Val)
	return Component{Typ: c.Typ, Val: val}
}

func (c Component) Compare(rhs Component) int {
	if c.Typ != rhs.Typ {
		if c.Typ < rhs.Typ {
			return -1
		}
		return 1
	}
	if len(c.Val) != len(rhs.Val) {
		if len(c.Val) < len(rhs.Val) {
			return -1
		}
		return 1
	}
	return bytes.Compare(c.Val, rhs.Val)
}

func (c Component) Equal(rhs Component) bool {
	return c.Typ == rhs.Typ && bytes.Equal(c.Val, rhs.Val)
}

func isLegalCompText(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '_' || b == '.' || b == '~'
}

func (c Component) String() string {
	prefix := ""
	if c.Typ != TypeGenericNameComponent {
		prefix = strconv.FormatUint(uint64(c.Typ), 10) + "="
	}
	var b bytes.Buffer
	for _, x := range c.Val {
		if isLegalCompText(x) {
			b.WriteByte(x)
		} else {
			fmt.Fprintf(&b, "%%%02X", x)
		}
	}
	return prefix + b.String()
}

func ReadComponent(r ParseReader) (Component, error) {
	typ, err := ReadTLNum(r)
	if err != nil {
		return Component{}, err
	}
	l, err := ReadTLNum(r)
	if err != nil {
		return Component{}, unexpectedEOF(err)
	}
	val, err := r.ReadBuf(int(l))
	if err != nil {
		return Component{}, unexpectedEOF(err)
	}
	buf := make([]byte, len(val))
	copy(buf, val)
	return Component{Typ: typ, Val: buf}, nil
}

func ComponentFromBytes(buf []byte) (Component, error) {
	return ReadComponent(NewBufferReader(buf))
}

// NewBytesComponent creates a component of typ carrying the raw bytes val.
func NewBytesComponent(typ TLNum, val []byte) Component {
	return Component{Typ: typ, Val: val}
}

// NewStringComponent creates a component of typ carrying val as UTF-8 text.
func NewStringComponent(typ TLNum, val string) Component {
	return Component{Typ: typ, Val: []byte(val)}
}

// NewNumberComponent creates a component of typ carrying val as a NonNegativeInteger.
func NewNumberComponent(typ TLNum, val uint64) Component {
	return Component{Typ: typ, Val: Nat(val).Bytes()}
}

func NewSegmentComponent(seg uint64) Component {
	return NewNumberComponent(TypeSegmentNameComponent, seg)
}

func NewVersionComponent(v uint64) Component {
	return NewNumberComponent(TypeVersionNameComponent, v)
}

func NewTimestampComponent(t uint64) Component {
	return NewNumberComponent(TypeTimestampNameComponent, t)
}

func NewSequenceNumComponent(seq uint64) Component {
	return NewNumberComponent(TypeSequenceNumNameComponent, seq)
}

// NumberVal decodes the component's value as a big-endian NonNegativeInteger.
func (c Component) NumberVal() uint64 {
	var x uint64
	for _, b := range c.Val {
		x = x<<8 | uint64(b)
	}
	return x
}
