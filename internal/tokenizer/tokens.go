// Package tokenizer splits a delimiter-separated byte stream into rows of text fields.
//
// The tokenizer works on 8-bit code units: the delimiter, quote, carriage return and
// line feed are matched as single bytes, and a finished field's byte range is only
// decoded into text when the field closes. Encodings must therefore be ASCII supersets.
package tokenizer

// Control bytes recognised outside escaped sections.
const (
	LineFeed       byte = '\n'
	CarriageReturn byte = '\r'

	DefaultDelimiter byte = ','
	DefaultQuote     byte = '"'
)
