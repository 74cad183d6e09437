package tokenizer

import (
	"context"
	"io"
)

const defaultBufferSize = 32 << 10

// byteSource hands out one byte at a time from a chunked read buffer.
// It is the only place the tokenizer can block, so it is also the only
// place the context is checked.
type byteSource struct {
	src io.Reader

	buf    []byte
	bufPos int
	bufLen int
	bufErr error
}

func newByteSource(r io.Reader, size int) *byteSource {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &byteSource{
		src: r,
		buf: make([]byte, size),
	}
}

// next returns the next byte. io.EOF signals the end of the stream; any other
// error (including ctx cancellation) comes from the underlying reader.
func (s *byteSource) next(ctx context.Context) (byte, error) {
	if s.bufPos >= s.bufLen {
		if err := s.fill(ctx); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.bufPos]
	s.bufPos++
	return b, nil
}

// fill pulls the next chunk, skipping empty reads.
func (s *byteSource) fill(ctx context.Context) error {
	for {
		if s.bufErr != nil {
			return s.bufErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.src.Read(s.buf)
		s.bufPos = 0
		s.bufLen = n
		if err != nil {
			s.bufErr = err
		}
		if n > 0 {
			return nil
		}
		if err == nil {
			continue
		}
		return err
	}
}
