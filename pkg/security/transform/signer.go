package transform

import (
	"bytes"
	"io"

	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

// SignerFilter accumulates the bytes written to it and, on Finalize,
// signs them with key and writes the signature downstream.
//
// PrivateKey.Sign hashes the full covered region itself (SM2's ZA
// preprocessing needs the whole message, not an incremental digest),
// so this filter buffers rather than streaming through a hash.Hash the
// way DigestFilter does.
type SignerFilter struct {
	key *keys.PrivateKey
	buf bytes.Buffer
	dst io.Writer
}

// NewSignerFilter returns a Filter that signs with key and writes the
// signature downstream to dst.
func NewSignerFilter(key *keys.PrivateKey, dst io.Writer) *SignerFilter {
	return &SignerFilter{key: key, dst: dst}
}

func (f *SignerFilter) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *SignerFilter) Finalize() error {
	sig, err := f.key.Sign(f.buf.Bytes())
	if err != nil {
		return err
	}
	if _, err := f.dst.Write(sig); err != nil {
		return err
	}
	return chainFinalize(f.dst)
}
