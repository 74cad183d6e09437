// Package csv decodes delimiter-separated text streams into Go values.
//
// Rows are read incrementally from any io.Reader, so memory use depends on the
// widest row rather than the size of the input. Fields are split by a
// single-byte delimiter; an escape character (by default the double quote)
// toggles escaping so delimiters and line breaks can appear inside a field.
//
// # Reading APIs
//
// The package provides several surfaces over the same row stream:
//
//   - Reader - raw rows as []string
//   - DictReader - rows as map[string]string keyed by the header
//   - Scanner - bufio-style Scan/Record loop
//   - Iterator[T] - rows decoded into T, with a range-over-func All
//   - Unmarshal and ReadAll - whole-input convenience
//   - ReadAST - rows as a shape AST for use with other shape parsers
//
// # Decoding
//
// A Decoder exposes one row to a target. Fields are looked up by Key, which
// carries a column name, a position, or both. Types implementing Unmarshaler
// decode themselves; tagged structs are decoded by reflection:
//
//	type Person struct {
//	    Name string `csv:"name"`
//	    Age  uint8  `csv:"age"`
//	}
//
//	people, err := csv.ReadAll[Person](ctx, file, csv.DefaultOptions())
//
// # Thread Safety
//
// Options and the package functions are safe for concurrent use. A Reader,
// Scanner, DictReader or Iterator serves one consumer; a call to Next or
// Header made while another is running returns ErrConcurrentUse.
package csv

import (
	"context"
	"errors"
	"io"
)

// Format returns the format identifier for this parser.
func Format() string {
	return "CSV"
}

// ValidationReport summarizes a full pass over an input.
type ValidationReport struct {
	// Header is the captured header, or nil.
	Header []string
	// Rows counts data rows with the expected number of fields.
	Rows int
	// Invalid holds one error per row with the wrong number of fields.
	Invalid []*RowArityError
}

// Validate reads src to the end and reports every row with the wrong number
// of fields. opts.SkipInvalidRows is ignored. The returned error is non-nil
// only for invalid options, source failures, and cancellation.
func Validate(ctx context.Context, src io.Reader, opts Options) (*ValidationReport, error) {
	opts.SkipInvalidRows = false
	r, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	header, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	report := &ValidationReport{Header: header}
	for {
		_, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		var arity *RowArityError
		if errors.As(err, &arity) {
			report.Invalid = append(report.Invalid, arity)
			continue
		}
		if err != nil {
			return report, err
		}
		report.Rows++
	}
}
