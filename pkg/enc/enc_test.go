package enc_test

import (
	"testing"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromStrRoundTrip(t *testing.T) {
	n, err := enc.NameFromStr("/ndn-keychain-test/alice/KEY/abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "/ndn-keychain-test/alice/KEY/abcd1234", n.String())

	wire := n.Bytes()
	got, err := enc.NameFromBytes(wire)
	require.NoError(t, err)
	assert.True(t, n.Equal(got))
}

func TestNameFromStrTypedComponent(t *testing.T) {
	n, err := enc.NameFromStr("/a/35=c")
	require.NoError(t, err)
	require.Len(t, n, 2)
	assert.Equal(t, enc.TLNum(35), n[1].Typ)
	assert.Equal(t, "c", string(n[1].Val))
}

func TestNamePrefixRelations(t *testing.T) {
	parent, err := enc.NameFromStr("/ndn-keychain-test/alice")
	require.NoError(t, err)
	child, err := enc.NameFromStr("/ndn-keychain-test/alice/KEY/1")
	require.NoError(t, err)

	assert.True(t, parent.IsPrefix(child))
	assert.True(t, parent.IsStrictPrefix(child))
	assert.False(t, child.IsStrictPrefix(parent))
	assert.False(t, parent.IsStrictPrefix(parent))
}

func TestNameCompareOrdersByComponentThenLength(t *testing.T) {
	a, err := enc.NameFromStr("/a/b")
	require.NoError(t, err)
	b, err := enc.NameFromStr("/a/c")
	require.NoError(t, err)
	ab, err := enc.NameFromStr("/a/b/c")
	require.NoError(t, err)

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Negative(t, a.Compare(ab), "a shorter name sorts before one it is a prefix of")
	assert.Zero(t, a.Compare(a.Clone()))
}

func TestNameHashIsStableAndDistinguishesNames(t *testing.T) {
	a, err := enc.NameFromStr("/a/b")
	require.NoError(t, err)
	b, err := enc.NameFromStr("/a/c")
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), a.Clone().Hash())
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestComponentPercentEncodingRoundTrip(t *testing.T) {
	n, err := enc.NameFromStr("/space%20here")
	require.NoError(t, err)
	require.Len(t, n, 1)
	assert.Equal(t, "space here", string(n[0].Val))
	assert.Equal(t, "space%20here", n[0].String())
}

func TestNatEncodeDecodeRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 252, 253, 65535, 65536, 1 << 40} {
		buf := make(enc.Buffer, enc.Nat(v).EncodingLength())
		enc.Nat(v).EncodeInto(buf)
		got, err := enc.ParseNat(buf)
		require.NoError(t, err)
		assert.Equal(t, v, uint64(got))
	}
}
