package keys_test

import (
	"encoding/hex"
	"testing"

	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/stretchr/testify/assert"
)

func TestSm3KnownAnswer(t *testing.T) {
	// GB/T 32905-2016 Appendix A.1 test vector.
	h := keys.NewSm3()
	h.Write([]byte("abc"))
	sum := h.Sum(nil)
	assert.Equal(t, "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0", hex.EncodeToString(sum))
}

func TestSm3StreamingMatchesSingleWrite(t *testing.T) {
	msg := []byte("the quick brown fox jumps over the lazy dog, and then some more padding bytes to cross a block boundary")

	h1 := keys.NewSm3()
	h1.Write(msg)
	whole := h1.Sum(nil)

	h2 := keys.NewSm3()
	for _, b := range msg {
		h2.Write([]byte{b})
	}
	piecewise := h2.Sum(nil)

	assert.Equal(t, whole, piecewise)
}

func TestSm3EmptyInputDoesNotPanic(t *testing.T) {
	h := keys.NewSm3()
	assert.NotPanics(t, func() {
		h.Sum(nil)
	})
}

func TestSm3BoundaryLengthsDoNotPanic(t *testing.T) {
	for n := 0; n < 130; n++ {
		h := keys.NewSm3()
		h.Write(make([]byte, n))
		assert.NotPanics(t, func() {
			h.Sum(nil)
		}, "length %d", n)
	}
}
