package enc

import "encoding/binary"

// TLNum is a TLV Type or Length number, encoded per the NDN packet spec's
// variable-length integer format (1, 3, 5 or 9 bytes).
type TLNum uint64

// Nat is a TLV natural number, encoded as a fixed-width big-endian integer
// whose width (1, 2, 4 or 8 bytes) is implied by the TLV Length.
type Nat uint64

func (v TLNum) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xfc:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

func (v TLNum) EncodeInto(buf Buffer) int {
	switch x := uint64(v); {
	case x <= 0xfc:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(x))
		return 3
	case x <= 0xffffffff:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(x))
		return 5
	default:
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], x)
		return 9
	}
}

// ParseTLNum parses a TLNum from the front of buf. Callers must ensure buf
// is long enough; it panics on truncated input, mirroring the teacher's
// "trusted caller" contract for the hot decode path.
func ParseTLNum(buf Buffer) (val TLNum, pos int) {
	switch x := buf[0]; {
	case x <= 0xfc:
		return TLNum(x), 1
	case x == 0xfd:
		return TLNum(binary.BigEndian.Uint16(buf[1:3])), 3
	case x == 0xfe:
		return TLNum(binary.BigEndian.Uint32(buf[1:5])), 5
	default:
		return TLNum(binary.BigEndian.Uint64(buf[1:9])), 9
	}
}

// ReadTLNum reads a TLNum from an io.ByteReader, returning io.EOF/
// io.ErrUnexpectedEOF the way the rest of the decoder expects.
func ReadTLNum(r ByteReader) (val TLNum, err error) {
	x, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if x <= 0xfc {
		return TLNum(x), nil
	}
	l := 2
	switch x {
	case 0xfd:
		l = 2
	case 0xfe:
		l = 4
	case 0xff:
		l = 8
	}
	for i := 0; i < l; i++ {
		if x, err = r.ReadByte(); err != nil {
			return 0, unexpectedEOF(err)
		}
		val = val<<8 | TLNum(x)
	}
	return val, nil
}

// ByteReader is the minimal subset of io.ByteReader used by ReadTLNum;
// kept as its own type so callers need not import io directly here.
type ByteReader interface {
	ReadByte() (byte, error)
}

func (v Nat) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xff:
		return 1
	case x <= 0xffff:
		return 2
	case x <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

func (v Nat) EncodeInto(buf Buffer) int {
	switch x := uint64(v); {
	case x <= 0xff:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		binary.BigEndian.PutUint16(buf, uint16(x))
		return 2
	case x <= 0xffffffff:
		binary.BigEndian.PutUint32(buf, uint32(x))
		return 4
	default:
		binary.BigEndian.PutUint64(buf, x)
		return 8
	}
}

func (v Nat) Bytes() []byte {
	buf := make([]byte, v.EncodingLength())
	v.EncodeInto(buf)
	return buf
}

func ParseNat(buf Buffer) (Nat, error) {
	switch len(buf) {
	case 1:
		return Nat(buf[0]), nil
	case 2:
		return Nat(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return Nat(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return Nat(binary.BigEndian.Uint64(buf)), nil
	default:
		return 0, ErrFormat{"enc: natural number length is not 1, 2, 4 or 8"}
	}
}
