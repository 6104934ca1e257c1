package transform

import (
	"encoding/base64"
	"io"
)

// Base64EncoderFilter streams its input through standard base64
// encoding, writing encoded bytes downstream as soon as a full 3-byte
// group accumulates.
type Base64EncoderFilter struct {
	enc io.WriteCloser
	dst io.Writer
}

// NewBase64EncoderFilter returns a Filter that base64-encodes bytes
// written to it and forwards the encoded text to dst.
func NewBase64EncoderFilter(dst io.Writer) *Base64EncoderFilter {
	return &Base64EncoderFilter{enc: base64.NewEncoder(base64.StdEncoding, dst), dst: dst}
}

func (f *Base64EncoderFilter) Write(p []byte) (int, error) { return f.enc.Write(p) }

func (f *Base64EncoderFilter) Finalize() error {
	if err := f.enc.Close(); err != nil {
		return err
	}
	return chainFinalize(f.dst)
}

// Base64DecoderFilter streams its input through standard base64
// decoding.
type Base64DecoderFilter struct {
	buf []byte
	dst io.Writer
}

// NewBase64DecoderFilter returns a Filter that base64-decodes bytes
// written to it and forwards the decoded bytes to dst. Decoding is
// buffered since base64.Decoder is reader-driven, not writer-driven.
func NewBase64DecoderFilter(dst io.Writer) *Base64DecoderFilter {
	return &Base64DecoderFilter{dst: dst}
}

func (f *Base64DecoderFilter) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *Base64DecoderFilter) Finalize() error {
	decoded, err := base64.StdEncoding.DecodeString(string(f.buf))
	if err != nil {
		return err
	}
	if _, err := f.dst.Write(decoded); err != nil {
		return err
	}
	return chainFinalize(f.dst)
}
