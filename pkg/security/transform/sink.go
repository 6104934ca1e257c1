package transform

import (
	"bytes"
	"io"
)

// BufferSink accumulates every byte written to it. Bytes become
// available via Buf only after Finalize.
type BufferSink struct {
	buf bytes.Buffer
	fin bool
}

// NewBufferSink returns an empty BufferSink.
func NewBufferSink() *BufferSink { return &BufferSink{} }

func (s *BufferSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *BufferSink) Finalize() error {
	s.fin = true
	return nil
}

// Buf returns the accumulated bytes. Only meaningful after Finalize.
func (s *BufferSink) Buf() []byte { return s.buf.Bytes() }

// StreamSink writes every byte through to an underlying io.Writer,
// e.g. a file or network connection.
type StreamSink struct {
	w io.Writer
}

// NewStreamSink wraps w as a Sink.
func NewStreamSink(w io.Writer) *StreamSink { return &StreamSink{w: w} }

func (s *StreamSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *StreamSink) Finalize() error {
	if c, ok := s.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
