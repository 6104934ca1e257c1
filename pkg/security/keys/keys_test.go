package keys_test

import (
	"testing"

	"github.com/named-data/ndn-keychain/pkg/ndn"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndSignVerifyRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		params keys.KeyParams
	}{
		{"rsa", keys.RsaParams(2048)},
		{"ec", keys.EcParams(256)},
		{"sm2", keys.Sm2Params()},
		{"hmac", keys.HmacParams(256)},
	}
	payload := []byte("the quick brown fox jumps over the lazy dog")

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			priv, err := keys.GeneratePrivateKey(c.params)
			require.NoError(t, err)
			assert.Equal(t, c.params.Type, priv.KeyType())

			sig, err := priv.Sign(payload)
			require.NoError(t, err)

			pub, err := priv.GetPublicKey()
			if c.params.Type == keys.KeyTypeHmac {
				assert.Error(t, err)
				pub = keys.LoadHmacPublicKey(mustRaw(t, priv))
			} else {
				require.NoError(t, err)
			}

			ok, err := pub.Verify(payload, sig)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = pub.Verify(append(payload, 'x'), sig)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func mustRaw(t *testing.T, priv *keys.PrivateKey) []byte {
	t.Helper()
	raw, err := priv.SaveRaw()
	require.NoError(t, err)
	return raw
}

func TestPkcs1RoundTrip(t *testing.T) {
	for _, kt := range []keys.KeyType{keys.KeyTypeRsa, keys.KeyTypeEc, keys.KeyTypeSm2} {
		params := keys.KeyParams{Type: kt, Size: 256}
		if kt == keys.KeyTypeRsa {
			params.Size = 2048
		}
		priv, err := keys.GeneratePrivateKey(params)
		require.NoError(t, err)

		der, err := priv.SavePkcs1()
		require.NoError(t, err)

		loaded := keys.NewPrivateKey()
		require.NoError(t, loaded.LoadPkcs1(der, kt))
		assert.Equal(t, kt, loaded.KeyType())

		sig, err := loaded.Sign([]byte("round trip"))
		require.NoError(t, err)
		pub, err := priv.GetPublicKey()
		require.NoError(t, err)
		ok, err := pub.Verify([]byte("round trip"), sig)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestPkcs8RoundTripEncryptedAndPlain(t *testing.T) {
	for _, kt := range []keys.KeyType{keys.KeyTypeRsa, keys.KeyTypeEc, keys.KeyTypeSm2} {
		params := keys.KeyParams{Type: kt, Size: 256}
		if kt == keys.KeyTypeRsa {
			params.Size = 2048
		}
		priv, err := keys.GeneratePrivateKey(params)
		require.NoError(t, err)

		plainDER, err := priv.SavePkcs8(nil)
		require.NoError(t, err)
		plainLoaded := keys.NewPrivateKey()
		require.NoError(t, plainLoaded.LoadPkcs8(plainDER, kt, nil))
		assert.Equal(t, kt, plainLoaded.KeyType())

		password := []byte("correct horse battery staple")
		encDER, err := priv.SavePkcs8(password)
		require.NoError(t, err)
		encLoaded := keys.NewPrivateKey()
		require.NoError(t, encLoaded.LoadPkcs8(encDER, kt, password))
		assert.Equal(t, kt, encLoaded.KeyType())

		wrongLoaded := keys.NewPrivateKey()
		assert.Error(t, wrongLoaded.LoadPkcs8(encDER, kt, []byte("wrong password")))
	}
}

func TestPublicKeySaveLoadRoundTrip(t *testing.T) {
	for _, kt := range []keys.KeyType{keys.KeyTypeRsa, keys.KeyTypeEc, keys.KeyTypeSm2} {
		params := keys.KeyParams{Type: kt, Size: 256}
		if kt == keys.KeyTypeRsa {
			params.Size = 2048
		}
		priv, err := keys.GeneratePrivateKey(params)
		require.NoError(t, err)
		pub, err := priv.GetPublicKey()
		require.NoError(t, err)

		der, err := pub.Save()
		require.NoError(t, err)

		loaded, err := keys.LoadPublicKey(der, kt)
		require.NoError(t, err)
		assert.Equal(t, kt, loaded.KeyType())
	}
}

func TestLoadingTwiceFails(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.EcParams(256))
	require.NoError(t, err)
	der, err := priv.SavePkcs1()
	require.NoError(t, err)

	loaded := keys.NewPrivateKey()
	require.NoError(t, loaded.LoadPkcs1(der, keys.KeyTypeEc))
	assert.Error(t, loaded.LoadPkcs1(der, keys.KeyTypeEc))
}

func TestLoadRawLoadsHmacKeyWithoutPkcs1Form(t *testing.T) {
	k := keys.NewPrivateKey()
	require.NoError(t, k.LoadRaw([]byte("shared-secret")))
	assert.Equal(t, keys.KeyTypeHmac, k.KeyType())

	_, err := k.SavePkcs1()
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cases := []keys.KeyParams{keys.RsaParams(2048), keys.Sm2Params()}
	plaintext := []byte("attack at dawn")

	for _, params := range cases {
		t.Run(params.Type.String(), func(t *testing.T) {
			priv, err := keys.GeneratePrivateKey(params)
			require.NoError(t, err)
			pub, err := priv.GetPublicKey()
			require.NoError(t, err)

			ct, err := pub.Encrypt(plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ct)

			pt, err := priv.Decrypt(ct)
			require.NoError(t, err)
			assert.Equal(t, plaintext, pt)
		})
	}
}

func TestEncryptRejectsNonEncryptingKeyTypes(t *testing.T) {
	for _, params := range []keys.KeyParams{keys.EcParams(256), keys.HmacParams(256)} {
		priv, err := keys.GeneratePrivateKey(params)
		require.NoError(t, err)

		_, err = priv.Decrypt([]byte("anything"))
		assert.Error(t, err)

		if params.Type != keys.KeyTypeHmac {
			pub, err := priv.GetPublicKey()
			require.NoError(t, err)
			_, err = pub.Encrypt([]byte("anything"))
			assert.Error(t, err)
		}
	}
}

func TestSignatureTypeMapping(t *testing.T) {
	st, err := keys.SignatureTypeFor(keys.KeyTypeSm2, keys.DigestSm3)
	require.NoError(t, err)
	kt, err := keys.KeyTypeFromSignatureType(st)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeSm2, kt)

	st, err = keys.SignatureTypeFor(keys.KeyTypeEc, keys.DigestSha256)
	require.NoError(t, err)
	kt, err = keys.KeyTypeFromSignatureType(st)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeEc, kt)

	_, err = keys.KeyTypeFromSignatureType(ndn.SignatureEmptyTest)
	assert.Error(t, err)
}
