package tpm_test

import (
	"path/filepath"
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/tpm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustName(t *testing.T, s string) enc.Name {
	t.Helper()
	n, err := enc.NameFromStr(s)
	require.NoError(t, err)
	return n
}

func TestMemoryBackendCreateGetDelete(t *testing.T) {
	tp, err := tpm.New("tpm-memory:")
	require.NoError(t, err)
	assert.Equal(t, "tpm-memory", tp.Scheme())
	assert.False(t, tp.IsTerminalMode())

	kn := mustName(t, "/alice/KEY/1")
	assert.False(t, tp.HasKey(kn))

	priv, err := tp.CreateKey(kn, keys.EcParams(256))
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeEc, priv.KeyType())
	assert.True(t, tp.HasKey(kn))

	loaded, err := tp.GetKey(kn)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeEc, loaded.KeyType())

	require.NoError(t, tp.DeleteKey(kn))
	assert.False(t, tp.HasKey(kn))
}

func TestMemoryBackendImportRejectsDuplicate(t *testing.T) {
	tp, err := tpm.New("tpm-memory:")
	require.NoError(t, err)
	kn := mustName(t, "/bob/KEY/1")
	priv, err := keys.GeneratePrivateKey(keys.Sm2Params())
	require.NoError(t, err)

	require.NoError(t, tp.ImportKey(kn, priv))
	assert.Error(t, tp.ImportKey(kn, priv))
}

func TestFileBackendRoundTripsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	locator := "tpm-file:" + dir

	kn := mustName(t, "/carol/KEY/1")

	tp1, err := tpm.New(locator)
	require.NoError(t, err)
	priv, err := tp1.CreateKey(kn, keys.RsaParams(2048))
	require.NoError(t, err)

	tp2, err := tpm.New(locator)
	require.NoError(t, err)
	assert.True(t, tp2.HasKey(kn))
	loaded, err := tp2.GetKey(kn)
	require.NoError(t, err)
	assert.Equal(t, priv.KeyType(), loaded.KeyType())

	sig, err := loaded.Sign([]byte("persisted across instances"))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)
	ok, err := pub.Verify([]byte("persisted across instances"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, tp2.DeleteKey(kn))
	assert.False(t, tp1.HasKey(kn))
}

func TestFileBackendHmacRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tp, err := tpm.New("tpm-file:" + filepath.Clean(dir))
	require.NoError(t, err)

	kn := mustName(t, "/dave/KEY/1")
	_, err = tp.CreateKey(kn, keys.HmacParams(256))
	require.NoError(t, err)

	loaded, err := tp.GetKey(kn)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeHmac, loaded.KeyType())
}

func TestBboltBackendRoundTripsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	locator := "tpm-bbolt:" + filepath.Join(dir, "tpm.bolt")

	kn := mustName(t, "/ivy/KEY/1")

	tp1, err := tpm.New(locator)
	require.NoError(t, err)
	priv, err := tp1.CreateKey(kn, keys.Sm2Params())
	require.NoError(t, err)
	require.NoError(t, tp1.Close())

	tp2, err := tpm.New(locator)
	require.NoError(t, err)
	defer tp2.Close()
	assert.True(t, tp2.HasKey(kn))
	loaded, err := tp2.GetKey(kn)
	require.NoError(t, err)
	assert.Equal(t, priv.KeyType(), loaded.KeyType())
}

func TestNewRejectsUnknownScheme(t *testing.T) {
	_, err := tpm.New("tpm-nonexistent:somewhere")
	assert.Error(t, err)
}

func TestNewRejectsMalformedLocator(t *testing.T) {
	_, err := tpm.New("no-colon-here")
	assert.Error(t, err)
}
