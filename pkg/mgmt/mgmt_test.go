package mgmt_test

import (
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/mgmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwarderStatusRoundTrip(t *testing.T) {
	s := &mgmt.ForwarderStatus{
		NfdVersion:       "ndn-keychain-0.1",
		StartTimestamp:   1000,
		CurrentTimestamp: 2000,
		NFibEntries:      3,
		NInInterests:     42,
		NOutData:         7,
	}
	wire := s.Encode()
	got, err := mgmt.DecodeForwarderStatus(wire)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFaceStatusRoundTrip(t *testing.T) {
	s := &mgmt.FaceStatus{
		FaceID:          1,
		URI:             "internal://",
		LocalURI:        "internal://",
		FaceScope:       0,
		FacePersistency: 0,
		LinkType:        0,
		NInInterests:    5,
		NOutData:        6,
	}
	wire := s.Encode()
	got, err := mgmt.DecodeFaceStatus(wire)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFibEntryRoundTrip(t *testing.T) {
	n, err := enc.NameFromStr("/ndn/test/prefix")
	require.NoError(t, err)
	e := &mgmt.FibEntry{
		Name: n,
		NextHops: []mgmt.NextHop{
			{FaceID: 1, Cost: 0},
			{FaceID: 2, Cost: 10},
		},
	}
	wire := e.Encode()
	got, err := mgmt.DecodeFibEntry(wire)
	require.NoError(t, err)
	assert.True(t, n.Equal(got.Name))
	assert.Equal(t, e.NextHops, got.NextHops)
}

func TestRibEntryRoundTrip(t *testing.T) {
	n, err := enc.NameFromStr("/ndn/test/prefix")
	require.NoError(t, err)
	e := &mgmt.RibEntry{
		Name: n,
		Routes: []mgmt.Route{
			{FaceID: 1, Origin: 0, Cost: 0, Flags: 1},
		},
	}
	wire := e.Encode()
	got, err := mgmt.DecodeRibEntry(wire)
	require.NoError(t, err)
	assert.True(t, n.Equal(got.Name))
	assert.Equal(t, e.Routes, got.Routes)
}

func TestDecodeForwarderStatusIgnoresUnknownFields(t *testing.T) {
	s := &mgmt.ForwarderStatus{NfdVersion: "x"}
	wire := s.Encode()
	wire = append(wire, 0xf0, 0x01, 0x09) // unrecognized field
	got, err := mgmt.DecodeForwarderStatus(wire)
	require.NoError(t, err)
	assert.Equal(t, "x", got.NfdVersion)
}
