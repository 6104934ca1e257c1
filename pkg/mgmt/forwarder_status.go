package mgmt

import "github.com/named-data/ndn-keychain/pkg/enc"

// Field numbers for the ForwarderStatus dataset (NFD Management Protocol,
// General Status Dataset).
const (
	tNfdVersion            enc.TLNum = 0x80
	tStartTimestamp        enc.TLNum = 0x81
	tCurrentTimestamp      enc.TLNum = 0x82
	tNNameTreeEntries      enc.TLNum = 0x83
	tNFibEntries           enc.TLNum = 0x84
	tNPitEntries           enc.TLNum = 0x85
	tNMeasurementEntries   enc.TLNum = 0x86
	tNCsEntries            enc.TLNum = 0x87
	tNInInterests          enc.TLNum = 0x90
	tNOutInterests         enc.TLNum = 0x92
	tNInData               enc.TLNum = 0x91
	tNOutData              enc.TLNum = 0x93
	tNInNacks              enc.TLNum = 0x97
	tNOutNacks             enc.TLNum = 0x98
	tNSatisfiedInterests   enc.TLNum = 0x99
	tNUnsatisfiedInterests enc.TLNum = 0x9a
)

// ForwarderStatus is the General Status dataset a forwarder publishes
// under <prefix>/status/general: counters and timestamps describing
// the forwarder as a whole. It has no behavior of its own — callers
// that actually run a forwarder populate and publish it; this package
// only knows how to move it to and from wire bytes.
type ForwarderStatus struct {
	NfdVersion            string
	StartTimestamp        uint64
	CurrentTimestamp      uint64
	NNameTreeEntries      uint64
	NFibEntries           uint64
	NPitEntries           uint64
	NMeasurementEntries   uint64
	NCsEntries            uint64
	NInInterests          uint64
	NOutInterests         uint64
	NInData               uint64
	NOutData              uint64
	NInNacks              uint64
	NOutNacks             uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
}

// Encode returns the dataset's Content-block payload (the caller is
// responsible for wrapping it in a Data packet's Content field).
func (s *ForwarderStatus) Encode() []byte {
	var buf []byte
	buf = appendString(buf, tNfdVersion, s.NfdVersion)
	buf = appendNNI(buf, tStartTimestamp, s.StartTimestamp)
	buf = appendNNI(buf, tCurrentTimestamp, s.CurrentTimestamp)
	buf = appendNNI(buf, tNNameTreeEntries, s.NNameTreeEntries)
	buf = appendNNI(buf, tNFibEntries, s.NFibEntries)
	buf = appendNNI(buf, tNPitEntries, s.NPitEntries)
	buf = appendNNI(buf, tNMeasurementEntries, s.NMeasurementEntries)
	buf = appendNNI(buf, tNCsEntries, s.NCsEntries)
	buf = appendNNI(buf, tNInInterests, s.NInInterests)
	buf = appendNNI(buf, tNInData, s.NInData)
	buf = appendNNI(buf, tNInNacks, s.NInNacks)
	buf = appendNNI(buf, tNOutInterests, s.NOutInterests)
	buf = appendNNI(buf, tNOutData, s.NOutData)
	buf = appendNNI(buf, tNOutNacks, s.NOutNacks)
	buf = appendNNI(buf, tNSatisfiedInterests, s.NSatisfiedInterests)
	buf = appendNNI(buf, tNUnsatisfiedInterests, s.NUnsatisfiedInterests)
	return buf
}

// DecodeForwarderStatus parses a ForwarderStatus dataset's Content
// payload. Unknown fields are ignored, per the usual TLV
// forward-compatibility rule.
func DecodeForwarderStatus(content []byte) (*ForwarderStatus, error) {
	fields, err := readFields(content)
	if err != nil {
		return nil, err
	}
	s := &ForwarderStatus{}
	for _, f := range fields {
		switch f.typ {
		case tNfdVersion:
			s.NfdVersion = string(f.val)
		case tStartTimestamp:
			s.StartTimestamp, err = nni(f.val)
		case tCurrentTimestamp:
			s.CurrentTimestamp, err = nni(f.val)
		case tNNameTreeEntries:
			s.NNameTreeEntries, err = nni(f.val)
		case tNFibEntries:
			s.NFibEntries, err = nni(f.val)
		case tNPitEntries:
			s.NPitEntries, err = nni(f.val)
		case tNMeasurementEntries:
			s.NMeasurementEntries, err = nni(f.val)
		case tNCsEntries:
			s.NCsEntries, err = nni(f.val)
		case tNInInterests:
			s.NInInterests, err = nni(f.val)
		case tNInData:
			s.NInData, err = nni(f.val)
		case tNInNacks:
			s.NInNacks, err = nni(f.val)
		case tNOutInterests:
			s.NOutInterests, err = nni(f.val)
		case tNOutData:
			s.NOutData, err = nni(f.val)
		case tNOutNacks:
			s.NOutNacks, err = nni(f.val)
		case tNSatisfiedInterests:
			s.NSatisfiedInterests, err = nni(f.val)
		case tNUnsatisfiedInterests:
			s.NUnsatisfiedInterests, err = nni(f.val)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
