package transform

import (
	"bytes"

	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

// VerifierFilter accumulates the bytes written to it and checks them
// against a signature supplied up front. It is the terminal stage of a
// pipeline: there is nothing meaningful to push further downstream, so
// VerifierFilter implements Sink rather than Filter.
type VerifierFilter struct {
	key *keys.PublicKey
	sig []byte
	buf bytes.Buffer
	ok  bool
	err error
}

// NewVerifierFilter returns a Sink that verifies accumulated writes
// against sig using key.
func NewVerifierFilter(key *keys.PublicKey, sig []byte) *VerifierFilter {
	return &VerifierFilter{key: key, sig: sig}
}

func (f *VerifierFilter) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *VerifierFilter) Finalize() error {
	f.ok, f.err = f.key.Verify(f.buf.Bytes(), f.sig)
	return f.err
}

// Result reports whether the covered bytes' signature checked out.
// Only meaningful after Finalize.
func (f *VerifierFilter) Result() bool { return f.ok }
