package transform_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/named-data/ndn-keychain/pkg/security/keys"
	"github.com/named-data/ndn-keychain/pkg/security/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestSha256KnownAnswer(t *testing.T) {
	sink := transform.NewBufferSink()
	digest := transform.NewDigestFilter(keys.DigestSha256, sink)
	require.NoError(t, transform.NewBufferSource([]byte("abc")).PumpInto(digest))

	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	got := hex.EncodeToString(sink.Buf())
	assert.Equal(t, want, got)
}

func TestStreamSourceMatchesBufferSource(t *testing.T) {
	msg := strings.Repeat("the quick brown fox ", 5000) // forces multiple 32KiB chunks

	bufSink := transform.NewBufferSink()
	bufDigest := transform.NewDigestFilter(keys.DigestSha256, bufSink)
	require.NoError(t, transform.NewBufferSource([]byte(msg)).PumpInto(bufDigest))

	streamSink := transform.NewBufferSink()
	streamDigest := transform.NewDigestFilter(keys.DigestSha256, streamSink)
	require.NoError(t, transform.NewStreamSource(strings.NewReader(msg)).PumpInto(streamDigest))

	assert.Equal(t, bufSink.Buf(), streamSink.Buf())
}

func TestSignerVerifierPipelineRsa(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.RsaParams(2048))
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	payload := []byte("sign through the pipeline, not the direct API")

	sigSink := transform.NewBufferSink()
	signer := transform.NewSignerFilter(priv, sigSink)
	require.NoError(t, transform.NewBufferSource(payload).PumpInto(signer))

	verifier := transform.NewVerifierFilter(pub, sigSink.Buf())
	require.NoError(t, transform.NewBufferSource(payload).PumpInto(verifier))
	assert.True(t, verifier.Result())
}

func TestSignerVerifierPipelineSm2(t *testing.T) {
	priv, err := keys.GeneratePrivateKey(keys.Sm2Params())
	require.NoError(t, err)
	pub, err := priv.GetPublicKey()
	require.NoError(t, err)

	payload := []byte("SM2 needs the whole message for ZA, not a stream")

	sigSink := transform.NewBufferSink()
	signer := transform.NewSignerFilter(priv, sigSink)
	require.NoError(t, transform.NewBufferSource(payload).PumpInto(signer))

	verifier := transform.NewVerifierFilter(pub, sigSink.Buf())
	require.NoError(t, transform.NewBufferSource(payload).PumpInto(verifier))
	assert.True(t, verifier.Result())

	tamperedVerifier := transform.NewVerifierFilter(pub, sigSink.Buf())
	require.NoError(t, transform.NewBufferSource(append(payload, 'x')).PumpInto(tamperedVerifier))
	assert.False(t, tamperedVerifier.Result())
}

func TestBase64EncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("round trip through base64 filters")

	encSink := transform.NewBufferSink()
	encoder := transform.NewBase64EncoderFilter(encSink)
	require.NoError(t, transform.NewBufferSource(payload).PumpInto(encoder))

	decSink := transform.NewBufferSink()
	decoder := transform.NewBase64DecoderFilter(decSink)
	require.NoError(t, transform.NewBufferSource(encSink.Buf()).PumpInto(decoder))

	assert.Equal(t, payload, decSink.Buf())
}

func TestStreamSinkClosesUnderlyingWriter(t *testing.T) {
	cw := &closeTrackingWriter{Buffer: &bytes.Buffer{}}
	sink := transform.NewStreamSink(cw)
	require.NoError(t, transform.NewBufferSource([]byte("data")).PumpInto(sink))
	assert.True(t, cw.closed)
	assert.Equal(t, "data", cw.String())
}

type closeTrackingWriter struct {
	*bytes.Buffer
	closed bool
}

func (c *closeTrackingWriter) Close() error {
	c.closed = true
	return nil
}
