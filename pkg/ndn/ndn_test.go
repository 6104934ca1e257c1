package ndn_test

import (
	"testing"
	"time"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataEncodeDecodeRoundTrip(t *testing.T) {
	name, err := enc.NameFromStr("/ndn-keychain-test/doc/1")
	require.NoError(t, err)
	contentType := ndn.ContentTypeKey
	freshness := time.Hour
	d := &ndn.Data{
		Name:    name,
		Content: []byte("hello world"),
		MetaInfo: ndn.MetaInfo{
			ContentType:     &contentType,
			FreshnessPeriod: &freshness,
		},
	}
	d.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureDigestSha256})
	covered, err := d.SignedPortion()
	require.NoError(t, err)
	require.NotEmpty(t, covered)
	d.SetSignatureValue([]byte("fake-sig"))

	wire, err := d.Encode()
	require.NoError(t, err)

	got, err := ndn.DataFromBytes(wire)
	require.NoError(t, err)
	assert.True(t, name.Equal(got.Name))
	assert.Equal(t, []byte("hello world"), got.Content)
	require.NotNil(t, got.MetaInfo.ContentType)
	assert.Equal(t, ndn.ContentTypeKey, *got.MetaInfo.ContentType)
	require.NotNil(t, got.MetaInfo.FreshnessPeriod)
	assert.Equal(t, freshness, *got.MetaInfo.FreshnessPeriod)
	assert.Equal(t, ndn.SignatureDigestSha256, got.Signature().SigType())
	assert.Equal(t, []byte("fake-sig"), got.Signature().SigValue())
}

func TestDataSignatureNilWhenUnsigned(t *testing.T) {
	d := &ndn.Data{}
	assert.Nil(t, d.Signature())
}

func TestDataEncodeFailsWithoutSignatureValue(t *testing.T) {
	name, err := enc.NameFromStr("/a")
	require.NoError(t, err)
	d := &ndn.Data{Name: name}
	d.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureDigestSha256})
	_, err = d.Encode()
	assert.Error(t, err)
}

func TestInterestEncodeDecodeRoundTrip(t *testing.T) {
	name, err := enc.NameFromStr("/ndn-keychain-test/cmd")
	require.NoError(t, err)
	lifetime := 4 * time.Second
	keyName, err := enc.NameFromStr("/ndn-keychain-test/alice/KEY/1")
	require.NoError(t, err)

	in := &ndn.Interest{
		Name:             name,
		MustBeFresh:      true,
		InterestLifetime: &lifetime,
	}
	in.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureSha256WithEcdsa, KeyName: keyName})
	covered, err := in.SignedPortion()
	require.NoError(t, err)
	require.NotEmpty(t, covered)
	in.SetSignatureValue([]byte("fake-sig"))

	wire, err := in.Encode()
	require.NoError(t, err)
	assert.NotEmpty(t, wire)

	assert.Equal(t, ndn.SignatureSha256WithEcdsa, in.Signature().SigType())
	assert.True(t, keyName.Equal(in.Signature().KeyName()))
}

func TestInterestSignatureNilWhenUnsigned(t *testing.T) {
	in := &ndn.Interest{}
	assert.Nil(t, in.Signature())
}

func TestInterestEncodeFailsWithoutSignature(t *testing.T) {
	name, err := enc.NameFromStr("/a")
	require.NoError(t, err)
	in := &ndn.Interest{Name: name}
	_, err = in.Encode()
	assert.Error(t, err)
}
