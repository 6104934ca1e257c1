// Package transform implements the Source -> Filter -> Sink pipeline
// used to compute digests, signatures and base64 encodings over a byte
// stream. DigestFilter and Base64EncoderFilter stream their input;
// SignerFilter, VerifierFilter and Base64DecoderFilter buffer the whole
// input until Finalize.
//
// A pipeline is built by chaining calls: a Source is fed through zero
// or more Filters and drained into exactly one Sink. Every stage is
// push-driven and single-use: once a Source has been pumped to
// completion the pipeline cannot be reused.
package transform

import "io"

// Filter consumes bytes written to it and pushes transformed bytes
// downstream to the next Filter or Sink in the chain. Filters are
// chained by construction (NewDigestFilter, NewSignerFilter, ...) which
// return a Filter wired to write its output into the next stage.
type Filter interface {
	io.Writer
	// Finalize flushes any buffered state and signals end-of-stream to
	// the downstream stage. A Filter must not be written to again after
	// Finalize.
	Finalize() error
}

// Sink is the terminal stage of a pipeline.
type Sink interface {
	io.Writer
	// Finalize signals end-of-stream. Sinks that accumulate output
	// (BufferSink) make it available only after Finalize returns.
	Finalize() error
}

// Source is anything that can pump its bytes through a chain of
// Filters into a Sink.
type Source interface {
	// PumpInto pushes every byte of this source through dst, then calls
	// dst.Finalize().
	PumpInto(dst io.Writer) error
}

// chainFinalize finalizes dst, tolerating Writers that are plain
// io.Writer (no Finalize method) by treating them as already final.
func chainFinalize(dst io.Writer) error {
	if f, ok := dst.(interface{ Finalize() error }); ok {
		return f.Finalize()
	}
	return nil
}
