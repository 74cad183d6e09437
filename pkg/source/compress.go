package source

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names a stream compression format.
type Codec string

const (
	// Auto detects the codec from the file extension.
	Auto Codec = "auto"
	// None reads the bytes as they are.
	None   Codec = "none"
	Gzip   Codec = "gzip"
	Zstd   Codec = "zstd"
	S2     Codec = "s2"
	Snappy Codec = "snappy"
	LZ4    Codec = "lz4"
)

var extensions = map[string]Codec{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".s2":   S2,
	".sz":   Snappy,
	".lz4":  LZ4,
}

// ParseCodec parses a codec name as accepted on the command line.
func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(s)); c {
	case "":
		return Auto, nil
	case Auto, None, Gzip, Zstd, S2, Snappy, LZ4:
		return c, nil
	}
	return "", fmt.Errorf("source: unknown codec %q", s)
}

// DetectCodec returns the codec implied by name's extension, or None.
func DetectCodec(name string) Codec {
	if c, ok := extensions[strings.ToLower(path.Ext(name))]; ok {
		return c
	}
	return None
}

// multiCloser closes every closer in order and reports the first failure.
type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func decompress(raw io.ReadCloser, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case None, Auto, "":
		return raw, nil

	case Gzip:
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{zr, raw}}, nil

	case Zstd:
		dec, err := zstd.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &multiCloser{Reader: dec, closers: []io.Closer{dec.IOReadCloser(), raw}}, nil

	case S2:
		return &multiCloser{Reader: s2.NewReader(raw), closers: []io.Closer{raw}}, nil

	case Snappy:
		return &multiCloser{Reader: snappy.NewReader(raw), closers: []io.Closer{raw}}, nil

	case LZ4:
		return &multiCloser{Reader: lz4.NewReader(raw), closers: []io.Closer{raw}}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", codec)
}
