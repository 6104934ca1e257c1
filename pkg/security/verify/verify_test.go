package verify_test

import (
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
	"github.com/named-data/ndn-keychain/pkg/security/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, priv *keys.PrivateKey, d *ndn.Data, sigType ndn.SigType) {
	t.Helper()
	d.SetSignatureInfo(&ndn.SigConfig{Type: sigType})
	covered, err := d.SignedPortion()
	require.NoError(t, err)
	sig, err := priv.Sign(covered.Join())
	require.NoError(t, err)
	d.SetSignatureValue(sig)
}

func TestDataWithKeyAcceptsGenuineSignature(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.EcParams(256))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	name, err := enc.NameFromStr("/ndn-keychain-test/verify/1")
	require.NoError(t, err)
	d := &ndn.Data{Name: name, Content: []byte("payload")}
	sign(t, priv, d, ndn.SignatureSha256WithEcdsa)

	ok, err := verify.DataWithKey(d, pub)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDataWithKeyRejectsTamperedContent(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.RsaParams(2048))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	name, err := enc.NameFromStr("/ndn-keychain-test/verify/2")
	require.NoError(t, err)
	d := &ndn.Data{Name: name, Content: []byte("payload")}
	sign(t, priv, d, ndn.SignatureSha256WithRsa)

	d.Content = []byte("tampered")
	ok, err := verify.DataWithKey(d, pub)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDataWithKeyRejectsUnsignedPacket(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.EcParams(256))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	name, err := enc.NameFromStr("/a")
	require.NoError(t, err)
	d := &ndn.Data{Name: name}
	_, err = verify.DataWithKey(d, pub)
	assert.Error(t, err)
}

func TestInterestWithKeyAcceptsGenuineSignature(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.Sm2Params())
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	name, err := enc.NameFromStr("/ndn-keychain-test/verify/cmd")
	require.NoError(t, err)
	in := &ndn.Interest{Name: name}
	in.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureSm3WithSm2})
	covered, err := in.SignedPortion()
	require.NoError(t, err)
	sig, err := priv.Sign(covered.Join())
	require.NoError(t, err)
	in.SetSignatureValue(sig)

	ok, err := verify.InterestWithKey(in, pub)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDataWithCertUsesCertificatePublicKey(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.EcParams(256))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)
	pubDer, err := pub.Save()
	require.NoError(t, err)

	certName, err := enc.NameFromStr("/ndn-keychain-test/verify/alice/KEY/1/self/v1")
	require.NoError(t, err)
	certData := &ndn.Data{Name: certName, Content: pubDer}
	certData.SetSignatureInfo(&ndn.SigConfig{Type: ndn.SignatureSha256WithEcdsa})
	covered, err := certData.SignedPortion()
	require.NoError(t, err)
	certSig, err := priv.Sign(covered.Join())
	require.NoError(t, err)
	certData.SetSignatureValue(certSig)
	certWire, err := certData.Encode()
	require.NoError(t, err)

	cert := &pib.Certificate{Name: certName, Data: certWire}

	name, err := enc.NameFromStr("/ndn-keychain-test/verify/3")
	require.NoError(t, err)
	d := &ndn.Data{Name: name, Content: []byte("payload")}
	sign(t, priv, d, ndn.SignatureSha256WithEcdsa)

	ok, err := verify.DataWithCert(d, cert, keys.KeyTypeEc)
	require.NoError(t, err)
	assert.True(t, ok)
}
