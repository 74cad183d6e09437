package tokenizer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func readAll(t *testing.T, tok *Tokenizer) [][]string {
	t.Helper()
	var rows [][]string
	for {
		row, err := tok.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, append([]string(nil), row...))
	}
}

func tokenize(t *testing.T, input string, cfg Config) [][]string {
	t.Helper()
	tok, err := New(strings.NewReader(input), cfg)
	require.NoError(t, err)
	return readAll(t, tok)
}

func TestTokenizerRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"basic", "a,b\nc,d\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"no trailing newline", "a,b\nc,d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"crlf", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"quoted delimiter", "\"a,b\",c\n", [][]string{{"a,b", "c"}}},
		{"quoted newline", "\"a\nb\",c\n", [][]string{{"a\nb", "c"}}},
		{"quoted crlf", "\"a\r\nb\",c\r\n", [][]string{{"a\r\nb", "c"}}},
		{"empty fields", ",,\n", [][]string{{"", "", ""}}},
		{"empty quoted field", "\"\",x\n", [][]string{{"", "x"}}},
		{"trailing delimiter at eof", "a,", [][]string{{"a", ""}}},
		{"empty line", "a\n\nb\n", [][]string{{"a"}, {""}, {"b"}}},
		{"quote reopened mid field", "\"a\"\"b\"\n", [][]string{{"a\"b"}}},
		{"quote inside unquoted field", "ab\"c\"\n", [][]string{{"ab\"c"}}},
		{"quote escapes delimiter mid field", "ab\"c,d\",e\n", [][]string{{"ab\"c,d", "e"}}},
		{"quoted empty at eof", "\"\"", [][]string{{""}}},
		{"unterminated quote", "\"a,b", [][]string{{"a,b"}}},
		{"utf8", "naïve,日本\n", [][]string{{"naïve", "日本"}}},
		{"empty input", "", nil},
		{"only newline", "\n", [][]string{{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(t, tt.input, DefaultConfig())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizerCarriageReturnConsumesNextByte(t *testing.T) {
	// A lone CR swallows the following byte whatever it is.
	got := tokenize(t, "a\rXb\n", DefaultConfig())
	assert.Equal(t, [][]string{{"a"}, {"b"}}, got)

	got = tokenize(t, "a,b\r", DefaultConfig())
	assert.Equal(t, [][]string{{"a", "b"}}, got)
}

func TestTokenizerLineEndingEquivalence(t *testing.T) {
	lf := "id,name\n1,\"x,y\"\n2,z\n"
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")
	assert.Equal(t, tokenize(t, lf, DefaultConfig()), tokenize(t, crlf, DefaultConfig()))
}

func TestTokenizerCustomBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delimiter = ';'
	cfg.Quote = '\''
	got := tokenize(t, "a;'b;c'\n", cfg)
	assert.Equal(t, [][]string{{"a", "b;c"}}, got)
}

func TestTokenizerEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = charmap.ISO8859_1
	// 0xE9 is é in Latin-1.
	got := tokenize(t, "caf\xe9,x\n", cfg)
	assert.Equal(t, [][]string{{"café", "x"}}, got)
}

func TestTokenizerInvalidUTF8IsReplaced(t *testing.T) {
	got := tokenize(t, "a\xffb\n", DefaultConfig())
	assert.Equal(t, [][]string{{"a�b"}}, got)
}

func TestNewValidatesBytes(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"non ascii delimiter", Config{Delimiter: '§', Quote: '"'}, ErrInvalidDelimiter},
		{"non ascii quote", Config{Delimiter: ',', Quote: '“'}, ErrInvalidQuote},
		{"same byte", Config{Delimiter: ',', Quote: ','}, ErrDelimiterIsQuote},
		{"utf16 is not single byte", Config{Delimiter: ',', Quote: '"', Encoding: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}, ErrInvalidDelimiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(strings.NewReader(""), tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenizerReusesRowStorage(t *testing.T) {
	tok, err := New(strings.NewReader("a,b\nc,d\n"), DefaultConfig())
	require.NoError(t, err)

	first, err := tok.Next(context.Background())
	require.NoError(t, err)
	second, err := tok.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "d"}, second)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, 2, tok.Rows())
}

func TestTokenizerSmallReads(t *testing.T) {
	input := "name,\"quoted, value\"\r\nx,y\r\n"
	tok, err := New(iotest.OneByteReader(strings.NewReader(input)), Config{Delimiter: ',', Quote: '"', BufferSize: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "quoted, value"}, {"x", "y"}}, readAll(t, tok))
}

func TestTokenizerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok, err := New(iotest.OneByteReader(strings.NewReader("a,b\nc,d\n")), Config{Delimiter: ',', Quote: '"', BufferSize: 1})
	require.NoError(t, err)

	row, err := tok.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, row)

	cancel()
	row, err = tok.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, row)

	// Cancellation ends the session.
	_, err = tok.Next(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenizerSourceError(t *testing.T) {
	boom := errors.New("disk gone")
	src := io.MultiReader(strings.NewReader("a,b\nc,"), iotest.ErrReader(boom))
	tok, err := New(src, DefaultConfig())
	require.NoError(t, err)

	_, err = tok.Next(context.Background())
	require.NoError(t, err)
	_, err = tok.Next(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestTokenizerIdempotent(t *testing.T) {
	input := "h1,h2\n\"q,1\",2\r\n3,4"
	assert.Equal(t, tokenize(t, input, DefaultConfig()), tokenize(t, input, DefaultConfig()))
}
