package transform

import (
	"crypto/sha256"
	"hash"
	"io"

	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

// DigestFilter hashes the bytes written to it and writes the final
// digest to the next stage on Finalize.
type DigestFilter struct {
	h   hash.Hash
	dst io.Writer
}

// NewDigestFilter returns a Filter that hashes with alg and writes the
// digest downstream to dst.
func NewDigestFilter(alg keys.DigestAlgorithm, dst io.Writer) *DigestFilter {
	var h hash.Hash
	switch alg {
	case keys.DigestSm3:
		h = keys.NewSm3()
	default:
		h = sha256.New()
	}
	return &DigestFilter{h: h, dst: dst}
}

func (f *DigestFilter) Write(p []byte) (int, error) { return f.h.Write(p) }

func (f *DigestFilter) Finalize() error {
	if _, err := f.dst.Write(f.h.Sum(nil)); err != nil {
		return err
	}
	return chainFinalize(f.dst)
}

// Sum returns the digest computed so far without finalizing the
// downstream stage; used by Signer/Verifier filters that need the raw
// digest rather than a copy of it written downstream.
func (f *DigestFilter) Sum() []byte { return f.h.Sum(nil) }
