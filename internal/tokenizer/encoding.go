package tokenizer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrInvalidDelimiter is returned when the delimiter is not a single byte in the encoding.
	ErrInvalidDelimiter = errors.New("delimiter is not a single byte in the configured encoding")
	// ErrInvalidQuote is returned when the quote is not a single byte in the encoding.
	ErrInvalidQuote = errors.New("escape character is not a single byte in the configured encoding")
	// ErrDelimiterIsQuote is returned when delimiter and quote are the same byte.
	ErrDelimiterIsQuote = errors.New("delimiter and escape character must differ")
)

// singleByte returns the byte that encodes r, or false when r is outside the
// ASCII range or enc does not map it onto that same byte.
func singleByte(r rune, enc encoding.Encoding) (byte, bool) {
	if r < 0 || r >= utf8.RuneSelf {
		return 0, false
	}
	want := []byte{byte(r)}
	got, err := enc.NewEncoder().Bytes(want)
	if err != nil || !bytes.Equal(got, want) {
		return 0, false
	}
	return byte(r), true
}

// fieldDecoder turns a finished field's bytes into owned text.
type fieldDecoder struct {
	utf8 bool
	dec  *encoding.Decoder
}

func newFieldDecoder(enc encoding.Encoding) *fieldDecoder {
	if enc == unicode.UTF8 {
		return &fieldDecoder{utf8: true}
	}
	return &fieldDecoder{dec: enc.NewDecoder()}
}

// text never fails: undecodable sequences become U+FFFD.
func (d *fieldDecoder) text(b []byte) string {
	if d.utf8 {
		if utf8.Valid(b) {
			return string(b)
		}
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	out, err := d.dec.Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

func validateBytes(cfg Config) (delim, quote byte, err error) {
	delim, ok := singleByte(cfg.Delimiter, cfg.Encoding)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, cfg.Delimiter)
	}
	quote, ok = singleByte(cfg.Quote, cfg.Encoding)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidQuote, cfg.Quote)
	}
	if delim == quote {
		return 0, 0, fmt.Errorf("%w: %q", ErrDelimiterIsQuote, cfg.Quote)
	}
	return delim, quote, nil
}
