package streamcsv

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// ByteSource is the asynchronous byte-source the parser pulls chunks from.
// It is external to the parser core: the parser never inspects a source
// directly, only pulls owned chunks from one via next().
//
// Implementations must return chunks with len(chunk) > 0 until they
// report done; a zero-length, non-done chunk is treated as "try again"
// rather than as end-of-stream.
type ByteSource interface {
	// next returns the next chunk of bytes, or done == true once
	// exhausted. The returned slice is owned by the caller and must not
	// be retained by the source after next returns.
	next() (chunk []byte, done bool, err error)
}

// readerSource adapts a plain io.Reader into a ByteSource, pulling up to
// chunkSize bytes per call. This is the default, and only required,
// ByteSource implementation.
type readerSource struct {
	r         io.Reader
	chunkSize int
	buf       []byte
	eof       bool
}

// NewReaderSource wraps r as a ByteSource, requesting chunkSize bytes per
// underlying Read call.
func NewReaderSource(r io.Reader, chunkSize int) ByteSource {
	if chunkSize <= 0 {
		chunkSize = DefaultReaderIteratorBufferSize
	}
	return &readerSource{r: r, chunkSize: chunkSize, buf: make([]byte, chunkSize)}
}

func (s *readerSource) next() ([]byte, bool, error) {
	if s.eof {
		return nil, true, nil
	}
	n, err := s.r.Read(s.buf)
	if n > 0 {
		out := make([]byte, n)
		copy(out, s.buf[:n])
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return out, false, err
		}
		return out, false, nil
	}
	if err == io.EOF {
		s.eof = true
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	// io.Reader permits a (0, nil) read with no progress; the caller is
	// expected to call next again rather than treat this as end-of-stream.
	return nil, false, nil
}

// NewLZ4ByteSource wraps an LZ4-framed io.Reader (see
// github.com/pierrec/lz4/v4) as a ByteSource, transparently decompressing
// as it pulls chunks. Useful for reading compressed CSV dumps without
// decompressing them to a temporary file first.
func NewLZ4ByteSource(r io.Reader, chunkSize int) ByteSource {
	return NewReaderSource(lz4.NewReader(r), chunkSize)
}
