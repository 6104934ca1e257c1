package pib_test

import (
	"path/filepath"
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/pib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locators(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		"memory":  "pib-memory:",
		"sqlite3": "pib-sqlite3:" + filepath.Join(t.TempDir(), "pib.db"),
	}
}

func TestIdentityKeyCertLifecycle(t *testing.T) {
	for name, locator := range locators(t) {
		t.Run(name, func(t *testing.T) {
			p, err := pib.New(locator)
			require.NoError(t, err)

			id, err := enc.NameFromStr("/alice")
			require.NoError(t, err)
			require.NoError(t, p.AddIdentity(id))

			got, err := p.GetIdentity(id)
			require.NoError(t, err)
			assert.True(t, id.Equal(got.Name))
			assert.True(t, got.IsDefault, "first identity becomes the default")

			def, err := p.DefaultIdentity()
			require.NoError(t, err)
			assert.True(t, id.Equal(def.Name))

			kn, err := enc.NameFromStr("/alice/KEY/1")
			require.NoError(t, err)
			require.NoError(t, p.AddKey(id, pib.Key{Name: kn, KeyBits: []byte("pubkey-der")}))

			dk, err := p.DefaultKey(id)
			require.NoError(t, err)
			assert.True(t, kn.Equal(dk.Name))
			assert.True(t, dk.IsDefault)

			cn, err := enc.NameFromStr("/alice/KEY/1/self/v1")
			require.NoError(t, err)
			require.NoError(t, p.AddCert(kn, pib.Certificate{Name: cn, Data: []byte("wire"), KeyLocator: kn}))

			dc, err := p.DefaultCert(kn)
			require.NoError(t, err)
			assert.True(t, cn.Equal(dc.Name))
			assert.True(t, dc.IsDefault)

			require.NoError(t, p.RemoveKey(kn))
			_, err = p.GetKey(kn)
			assert.ErrorIs(t, err, pib.ErrNotFound)
		})
	}
}

func TestSetDefaultKeyRejectsUnknownKey(t *testing.T) {
	for name, locator := range locators(t) {
		t.Run(name, func(t *testing.T) {
			p, err := pib.New(locator)
			require.NoError(t, err)
			id, err := enc.NameFromStr("/bob")
			require.NoError(t, err)
			require.NoError(t, p.AddIdentity(id))

			unknown, err := enc.NameFromStr("/bob/KEY/nonexistent")
			require.NoError(t, err)
			assert.ErrorIs(t, p.SetDefaultKey(id, unknown), pib.ErrNotFound)
		})
	}
}

func TestGetIdentityNotFound(t *testing.T) {
	for name, locator := range locators(t) {
		t.Run(name, func(t *testing.T) {
			p, err := pib.New(locator)
			require.NoError(t, err)
			n, err := enc.NameFromStr("/nobody")
			require.NoError(t, err)
			_, err = p.GetIdentity(n)
			assert.ErrorIs(t, err, pib.ErrNotFound)
		})
	}
}

func TestIdentityOfAndKeyOf(t *testing.T) {
	kn, err := enc.NameFromStr("/alice/KEY/1")
	require.NoError(t, err)
	id, err := pib.IdentityOf(kn)
	require.NoError(t, err)
	want, _ := enc.NameFromStr("/alice")
	assert.True(t, want.Equal(id))

	cn, err := enc.NameFromStr("/alice/KEY/1/self/v1")
	require.NoError(t, err)
	gotKn, err := pib.KeyOf(cn)
	require.NoError(t, err)
	assert.True(t, kn.Equal(gotKn))
}

func TestIdentityOfRejectsMalformedKeyName(t *testing.T) {
	bad, err := enc.NameFromStr("/alice/not-key/1")
	require.NoError(t, err)
	_, err = pib.IdentityOf(bad)
	assert.Error(t, err)
}

func TestNewRejectsUnknownScheme(t *testing.T) {
	_, err := pib.New("pib-nonexistent:somewhere")
	assert.Error(t, err)
}
