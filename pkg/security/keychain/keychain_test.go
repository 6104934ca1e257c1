package keychain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keychain"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyChain(t *testing.T) *keychain.KeyChain {
	t.Helper()
	kc, err := keychain.New("pib-memory:", "tpm-memory:", false)
	require.NoError(t, err)
	return kc
}

func TestCreateIdentityIsIdempotent(t *testing.T) {
	kc := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/alice")
	require.NoError(t, err)

	id1, err := kc.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)

	keys1, err := kc.Pib.KeysOf(name)
	require.NoError(t, err)
	require.Len(t, keys1, 1)

	id2, err := kc.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)
	assert.True(t, id1.Name.Equal(id2.Name))

	keys2, err := kc.Pib.KeysOf(name)
	require.NoError(t, err)
	assert.Len(t, keys2, 1, "creating the same identity twice must not mint a second key")
}

func TestCreateIdentityIssuesSelfSignedCertificate(t *testing.T) {
	kc := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/bob")
	require.NoError(t, err)

	_, err = kc.CreateIdentity(name, keys.RsaParams(2048))
	require.NoError(t, err)

	k, err := kc.Pib.DefaultKey(name)
	require.NoError(t, err)
	cert, err := kc.Pib.DefaultCert(k.Name)
	require.NoError(t, err)

	d, err := ndn.DataFromBytes(cert.Data)
	require.NoError(t, err)
	sig := d.Signature()
	require.NotNil(t, sig)
	assert.Equal(t, ndn.SignatureSha256WithRsa, sig.SigType())

	ok, err := verify.DataWithTpm(d, kc.Tpm, k.Name)
	require.NoError(t, err)
	assert.True(t, ok, "self-signed certificate must verify against its own key")
}

func TestSignDataWithDefaultIdentity(t *testing.T) {
	kc := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/carol")
	require.NoError(t, err)
	_, err = kc.CreateIdentity(name, keys.Sm2Params())
	require.NoError(t, err)
	require.NoError(t, kc.SetDefaultIdentity(name))

	dataName, err := enc.NameFromStr("/ndn-keychain-test/carol/doc/1")
	require.NoError(t, err)
	d := &ndn.Data{Name: dataName, Content: []byte("hello")}

	require.NoError(t, kc.SignData(d, keychain.SigningInfo{}))
	assert.Equal(t, ndn.SignatureSm3WithSm2, d.Signature().SigType())

	k, err := kc.Pib.DefaultKey(name)
	require.NoError(t, err)
	ok, err := verify.DataWithTpm(d, kc.Tpm, k.Name)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignDataFallsBackToDigestWithoutDefaultIdentity(t *testing.T) {
	kc := newTestKeyChain(t)
	dataName, err := enc.NameFromStr("/ndn-keychain-test/nobody/doc/1")
	require.NoError(t, err)
	d := &ndn.Data{Name: dataName, Content: []byte("unsigned-ish")}

	require.NoError(t, kc.SignData(d, keychain.SigningInfo{}))
	assert.Equal(t, ndn.SignatureDigestSha256, d.Signature().SigType())
	assert.Nil(t, d.Signature().KeyName())
}

func TestSignInterestWithExplicitKeyName(t *testing.T) {
	kc := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/dave")
	require.NoError(t, err)
	_, err = kc.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)
	k, err := kc.Pib.DefaultKey(name)
	require.NoError(t, err)

	intName, err := enc.NameFromStr("/ndn-keychain-test/dave/cmd")
	require.NoError(t, err)
	in := &ndn.Interest{Name: intName}
	require.NoError(t, kc.SignInterest(in, keychain.SigningInfo{KeyName: k.Name}))

	ok, err := verify.InterestWithTpm(in, kc.Tpm, k.Name)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteKeyRemovesFromBothStores(t *testing.T) {
	kc := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/erin")
	require.NoError(t, err)
	_, err = kc.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)
	k, err := kc.Pib.DefaultKey(name)
	require.NoError(t, err)

	require.NoError(t, kc.DeleteKey(k.Name))
	assert.False(t, kc.Tpm.HasKey(k.Name))
	_, err = kc.Pib.GetKey(k.Name)
	assert.Error(t, err)
}

func TestSafeBagExportImportRoundTrip(t *testing.T) {
	src := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/safebag/frank")
	require.NoError(t, err)
	_, err = src.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)
	k, err := src.Pib.DefaultKey(name)
	require.NoError(t, err)

	password := []byte("export-password")
	bag, err := src.ExportSafeBag(k.Name, nil, password)
	require.NoError(t, err)

	dst := newTestKeyChain(t)
	require.NoError(t, dst.ImportSafeBag(bag, password))

	assert.True(t, dst.Tpm.HasKey(k.Name))
	gotKey, err := dst.Pib.GetKey(k.Name)
	require.NoError(t, err)
	assert.True(t, k.Name.Equal(gotKey.Name))
}

func TestNewRejectsMismatchedTpmLocatorWithoutAllowReset(t *testing.T) {
	dir := t.TempDir()
	pibLocator := "pib-sqlite3:" + dir + "/pib.db"

	kc, err := keychain.New(pibLocator, "tpm-memory:", false)
	require.NoError(t, err)
	name, err := enc.NameFromStr("/ndn-keychain-test/mismatch/harry")
	require.NoError(t, err)
	_, err = kc.CreateIdentity(name, keys.EcParams(256))
	require.NoError(t, err)

	_, err = keychain.New(pibLocator, "tpm-file:"+dir+"/tpm", false)
	assert.Error(t, err, "a pib previously paired with a different tpm locator must be rejected")

	kc2, err := keychain.New(pibLocator, "tpm-file:"+dir+"/tpm", true)
	require.NoError(t, err, "allowReset must recover from the mismatch by resetting the pib")
	ids, err := kc2.Pib.Identities()
	require.NoError(t, err)
	assert.Empty(t, ids, "reset must discard identities carried over from the old tpm pairing")
}

func TestNewFromConfigFileReadsLocators(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "client.conf")
	contents := "[pib]\nlocator = \"pib-memory:\"\n\n[tpm]\nlocator = \"tpm-memory:\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(contents), 0o600))

	kc, err := keychain.NewFromConfigFile(cfgPath, false)
	require.NoError(t, err)
	assert.Equal(t, "tpm-memory", kc.Tpm.Scheme())
}

func TestSafeBagImportRejectsWrongPassword(t *testing.T) {
	src := newTestKeyChain(t)
	name, err := enc.NameFromStr("/ndn-keychain-test/safebag/grace")
	require.NoError(t, err)
	_, err = src.CreateIdentity(name, keys.RsaParams(2048))
	require.NoError(t, err)
	k, err := src.Pib.DefaultKey(name)
	require.NoError(t, err)

	bag, err := src.ExportSafeBag(k.Name, nil, []byte("right-password"))
	require.NoError(t, err)

	dst := newTestKeyChain(t)
	err = dst.ImportSafeBag(bag, []byte("wrong-password"))
	assert.Error(t, err)
	assert.False(t, dst.Tpm.HasKey(k.Name), "a failed import must not leave orphaned key material")
}
