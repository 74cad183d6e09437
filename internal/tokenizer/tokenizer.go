package tokenizer

import (
	"context"
	"errors"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Config configures a Tokenizer.
type Config struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
	// Quote toggles the escaped state. Default: '"'
	Quote rune
	// Encoding decodes finished fields. Default: UTF-8
	Encoding encoding.Encoding
	// BufferSize is the chunk size read from the source. Default: 32 KiB
	BufferSize int
}

// DefaultConfig returns comma-separated, double-quoted UTF-8.
func DefaultConfig() Config {
	return Config{
		Delimiter: rune(DefaultDelimiter),
		Quote:     rune(DefaultQuote),
		Encoding:  unicode.UTF8,
	}
}

// Tokenizer reads one row per call to Next.
//
// A Tokenizer is single-owner: the returned row and its internal buffers are
// reused by the following call.
type Tokenizer struct {
	src   *byteSource
	delim byte
	quote byte
	text  *fieldDecoder

	row    *rowBuffer
	fields []string
	rows   int

	// err is terminal: io.EOF once the input is exhausted, or the first
	// error returned by the source.
	err error
}

// New validates cfg and returns a Tokenizer reading from r.
func New(r io.Reader, cfg Config) (*Tokenizer, error) {
	if cfg.Encoding == nil {
		cfg.Encoding = unicode.UTF8
	}
	delim, quote, err := validateBytes(cfg)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{
		src:    newByteSource(r, cfg.BufferSize),
		delim:  delim,
		quote:  quote,
		text:   newFieldDecoder(cfg.Encoding),
		row:    newRowBuffer(),
		fields: make([]string, 0, 16),
	}, nil
}

// Rows returns how many rows have been emitted so far.
func (t *Tokenizer) Rows() int {
	return t.rows
}

// Next returns the next row, or io.EOF when the input is exhausted.
//
// Every quote byte toggles the escaped state. A quote that opens the first byte
// of a field is dropped, a quote that closes an escaped section is dropped, and
// any other opening quote is kept as text. A carriage return ends the row and
// consumes exactly one more byte, which is assumed to be the paired line feed.
func (t *Tokenizer) Next(ctx context.Context) ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}

	t.row.reset()
	escaped := false

	for {
		c, err := t.src.next(ctx)
		if err != nil {
			return t.finish(err)
		}

		switch {
		case c == t.quote:
			escaped = !escaped
			if !escaped {
				continue
			}
			if t.row.atFieldStart() && !t.row.opened {
				t.row.opened = true
				continue
			}
			t.row.appendByte(c)

		case escaped:
			t.row.appendByte(c)

		case c == t.delim:
			t.row.closeField()

		case c == LineFeed:
			t.row.closeField()
			return t.emit(), nil

		case c == CarriageReturn:
			t.row.closeField()
			if _, err := t.src.next(ctx); err != nil && !errors.Is(err, io.EOF) {
				t.err = err
				return nil, err
			}
			return t.emit(), nil

		default:
			t.row.appendByte(c)
		}
	}
}

// finish handles the end of the source. A trailing row without a line
// terminator is still emitted; the next call then reports io.EOF.
func (t *Tokenizer) finish(err error) ([]string, error) {
	t.err = err
	if !errors.Is(err, io.EOF) {
		return nil, err
	}
	t.err = io.EOF
	if !t.row.pending() {
		return nil, io.EOF
	}
	t.row.closeField()
	return t.emit(), nil
}

func (t *Tokenizer) emit() []string {
	n := t.row.numFields()
	t.fields = t.fields[:0]
	for i := 0; i < n; i++ {
		t.fields = append(t.fields, t.text.text(t.row.fieldBytes(i)))
	}
	t.rows++
	return t.fields
}
