package mgmt

import "github.com/named-data/ndn-keychain/pkg/enc"

const (
	tFibEntry      enc.TLNum = 0x80
	tNextHopRecord enc.TLNum = 0x81
	tRibEntry      enc.TLNum = 0x80
	tRoute         enc.TLNum = 0x81

	tName   enc.TLNum = 0x07
	tOrigin enc.TLNum = 0x6f
	tCost   enc.TLNum = 0x6a
	tFlags  enc.TLNum = 0x6c
)

// NextHop is one forwarding next hop inside a FibEntry.
type NextHop struct {
	FaceID uint64
	Cost   uint64
}

func (h NextHop) encode() []byte {
	var buf []byte
	buf = appendNNI(buf, tFaceID, h.FaceID)
	buf = appendNNI(buf, tCost, h.Cost)
	return buf
}

func decodeNextHop(wire []byte) (NextHop, error) {
	fields, err := readFields(wire)
	if err != nil {
		return NextHop{}, err
	}
	var h NextHop
	for _, f := range fields {
		switch f.typ {
		case tFaceID:
			h.FaceID, err = nni(f.val)
		case tCost:
			h.Cost, err = nni(f.val)
		}
		if err != nil {
			return NextHop{}, err
		}
	}
	return h, nil
}

// FibEntry is one entry of the FIB Status dataset published under
// <prefix>/fib/list: a name prefix and the next hops it forwards to.
type FibEntry struct {
	Name     enc.Name
	NextHops []NextHop
}

// Encode returns the FibEntry's TLV-encoded bytes.
func (e *FibEntry) Encode() []byte {
	buf := appendBytes(nil, tName, e.Name.Bytes())
	for _, h := range e.NextHops {
		buf = appendBytes(buf, tNextHopRecord, h.encode())
	}
	return buf
}

// DecodeFibEntry parses a single FibEntry's TLV bytes.
func DecodeFibEntry(wire []byte) (*FibEntry, error) {
	fields, err := readFields(wire)
	if err != nil {
		return nil, err
	}
	e := &FibEntry{}
	for _, f := range fields {
		switch f.typ {
		case tName:
			e.Name, err = enc.NameFromBytes(f.val)
		case tNextHopRecord:
			var h NextHop
			h, err = decodeNextHop(f.val)
			if err == nil {
				e.NextHops = append(e.NextHops, h)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Route is one routing entry inside a RibEntry.
type Route struct {
	FaceID uint64
	Origin uint64
	Cost   uint64
	Flags  uint64
}

func (r Route) encode() []byte {
	var buf []byte
	buf = appendNNI(buf, tFaceID, r.FaceID)
	buf = appendNNI(buf, tOrigin, r.Origin)
	buf = appendNNI(buf, tCost, r.Cost)
	buf = appendNNI(buf, tFlags, r.Flags)
	return buf
}

func decodeRoute(wire []byte) (Route, error) {
	fields, err := readFields(wire)
	if err != nil {
		return Route{}, err
	}
	var r Route
	for _, f := range fields {
		switch f.typ {
		case tFaceID:
			r.FaceID, err = nni(f.val)
		case tOrigin:
			r.Origin, err = nni(f.val)
		case tCost:
			r.Cost, err = nni(f.val)
		case tFlags:
			r.Flags, err = nni(f.val)
		}
		if err != nil {
			return Route{}, err
		}
	}
	return r, nil
}

// RibEntry is one entry of the RIB Status dataset published under
// <prefix>/rib/list: a name prefix and the routes registered for it.
type RibEntry struct {
	Name   enc.Name
	Routes []Route
}

// Encode returns the RibEntry's TLV-encoded bytes.
func (e *RibEntry) Encode() []byte {
	buf := appendBytes(nil, tName, e.Name.Bytes())
	for _, r := range e.Routes {
		buf = appendBytes(buf, tRoute, r.encode())
	}
	return buf
}

// DecodeRibEntry parses a single RibEntry's TLV bytes.
func DecodeRibEntry(wire []byte) (*RibEntry, error) {
	fields, err := readFields(wire)
	if err != nil {
		return nil, err
	}
	e := &RibEntry{}
	for _, f := range fields {
		switch f.typ {
		case tName:
			e.Name, err = enc.NameFromBytes(f.val)
		case tRoute:
			var r Route
			r, err = decodeRoute(f.val)
			if err == nil {
				e.Routes = append(e.Routes, r)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}
