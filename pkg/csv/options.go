package csv

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Options configures a parsing session. Options are read once when a reader is
// created; changing them afterwards has no effect on that reader.
type Options struct {
	// HasHeaders treats the first row as column names. When false, the width of
	// the first row becomes the expected field count and fields can only be
	// looked up by position.
	// Default: true
	HasHeaders bool

	// SkipInvalidRows silently drops rows whose field count differs from the
	// header (or first row) instead of returning a *RowArityError.
	// Default: false
	SkipInvalidRows bool

	// Delimiter separates fields. It must encode to a single ASCII byte.
	// Default: ','
	Delimiter rune

	// EscapeCharacter toggles escaping of delimiters and line breaks. It must
	// encode to a single ASCII byte.
	// Default: '"'
	EscapeCharacter rune

	// Encoding decodes each field's bytes into text. Only ASCII-compatible
	// encodings are supported.
	// Default: UTF-8
	Encoding encoding.Encoding

	// BooleanDecoding decides how fields are decoded into bool.
	// Default: BooleanDisabled
	BooleanDecoding BooleanDecodingBehavior

	// BufferSize is the number of bytes requested from the source per read.
	// Default: 32 KiB
	BufferSize int

	// Logger receives debug events (header capture, skipped rows).
	// Default: no-op
	Logger *zap.Logger

	// Observer is notified about rows read, skipped, and decode failures.
	// Default: none
	Observer Observer
}

// DefaultOptions returns the default session configuration.
func DefaultOptions() Options {
	return Options{
		HasHeaders:      true,
		SkipInvalidRows: false,
		Delimiter:       ',',
		EscapeCharacter: '"',
		Encoding:        unicode.UTF8,
		BooleanDecoding: BooleanDisabled,
	}
}

// Validate checks that the delimiter and escape character can be matched as
// single bytes in the configured encoding, and that a custom boolean pair
// uses two distinct literals.
func (o Options) Validate() error {
	if _, err := tokenizer.New(strings.NewReader(""), o.tokenizerConfig()); err != nil {
		return configError(err)
	}
	return o.BooleanDecoding.validate()
}

func (o Options) tokenizerConfig() tokenizer.Config {
	enc := o.Encoding
	if enc == nil {
		enc = unicode.UTF8
	}
	return tokenizer.Config{
		Delimiter:  o.Delimiter,
		Quote:      o.EscapeCharacter,
		Encoding:   enc,
		BufferSize: o.BufferSize,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return nopObserver{}
	}
	return o.Observer
}

// configError maps tokenizer validation failures onto *ConfigError.
func configError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tokenizer.ErrInvalidDelimiter):
		return &ConfigError{Field: "Delimiter", Err: err}
	case errors.Is(err, tokenizer.ErrInvalidQuote):
		return &ConfigError{Field: "EscapeCharacter", Err: err}
	case errors.Is(err, tokenizer.ErrDelimiterIsQuote):
		return &ConfigError{Field: "EscapeCharacter", Err: err}
	default:
		return err
	}
}

// LookupEncoding returns the encoding registered under name in the WHATWG
// encoding index, e.g. "utf-8", "latin1", "windows-1252".
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, &ConfigError{Field: "Encoding", Err: fmt.Errorf("unknown encoding %q: %w", name, err)}
	}
	return enc, nil
}
