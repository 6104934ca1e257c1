package mgmt

import "github.com/named-data/ndn-keychain/pkg/enc"

const (
	tFaceID          enc.TLNum = 0x69
	tURI             enc.TLNum = 0x72
	tLocalURI        enc.TLNum = 0x81
	tFaceScope       enc.TLNum = 0x84
	tFacePersistency enc.TLNum = 0x85
	tLinkType        enc.TLNum = 0x86
	tMTU             enc.TLNum = 0x89
	tNInInterestsF   enc.TLNum = 0x90
	tNInDataF        enc.TLNum = 0x91
	tNOutInterestsF  enc.TLNum = 0x92
	tNOutDataF       enc.TLNum = 0x93
	tNInBytes        enc.TLNum = 0x94
	tNOutBytes       enc.TLNum = 0x95
	tNInNacksF       enc.TLNum = 0x97
	tNOutNacksF      enc.TLNum = 0x98
)

// FaceStatus is one entry of the Face Status dataset published under
// <prefix>/faces/list: a face's identity, transport endpoints and
// traffic counters.
type FaceStatus struct {
	FaceID          uint64
	URI             string
	LocalURI        string
	FaceScope       uint64
	FacePersistency uint64
	LinkType        uint64
	MTU             uint64
	NInInterests    uint64
	NInData         uint64
	NOutInterests   uint64
	NOutData        uint64
	NInBytes        uint64
	NOutBytes       uint64
	NInNacks        uint64
	NOutNacks       uint64
}

// Encode returns the FaceStatus entry's TLV-encoded bytes.
func (s *FaceStatus) Encode() []byte {
	var buf []byte
	buf = appendNNI(buf, tFaceID, s.FaceID)
	buf = appendString(buf, tURI, s.URI)
	buf = appendString(buf, tLocalURI, s.LocalURI)
	buf = appendNNI(buf, tFaceScope, s.FaceScope)
	buf = appendNNI(buf, tFacePersistency, s.FacePersistency)
	buf = appendNNI(buf, tLinkType, s.LinkType)
	if s.MTU != 0 {
		buf = appendNNI(buf, tMTU, s.MTU)
	}
	buf = appendNNI(buf, tNInInterestsF, s.NInInterests)
	buf = appendNNI(buf, tNInDataF, s.NInData)
	buf = appendNNI(buf, tNOutInterestsF, s.NOutInterests)
	buf = appendNNI(buf, tNOutDataF, s.NOutData)
	buf = appendNNI(buf, tNInBytes, s.NInBytes)
	buf = appendNNI(buf, tNOutBytes, s.NOutBytes)
	buf = appendNNI(buf, tNInNacksF, s.NInNacks)
	buf = appendNNI(buf, tNOutNacksF, s.NOutNacks)
	return buf
}

// DecodeFaceStatus parses a single FaceStatus entry's TLV bytes.
func DecodeFaceStatus(wire []byte) (*FaceStatus, error) {
	fields, err := readFields(wire)
	if err != nil {
		return nil, err
	}
	s := &FaceStatus{}
	for _, f := range fields {
		switch f.typ {
		case tFaceID:
			s.FaceID, err = nni(f.val)
		case tURI:
			s.URI = string(f.val)
		case tLocalURI:
			s.LocalURI = string(f.val)
		case tFaceScope:
			s.FaceScope, err = nni(f.val)
		case tFacePersistency:
			s.FacePersistency, err = nni(f.val)
		case tLinkType:
			s.LinkType, err = nni(f.val)
		case tMTU:
			s.MTU, err = nni(f.val)
		case tNInInterestsF:
			s.NInInterests, err = nni(f.val)
		case tNInDataF:
			s.NInData, err = nni(f.val)
		case tNOutInterestsF:
			s.NOutInterests, err = nni(f.val)
		case tNOutDataF:
			s.NOutData, err = nni(f.val)
		case tNInBytes:
			s.NInBytes, err = nni(f.val)
		case tNOutBytes:
			s.NOutBytes, err = nni(f.val)
		case tNInNacksF:
			s.NInNacks, err = nni(f.val)
		case tNOutNacksF:
			s.NOutNacks, err = nni(f.val)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
