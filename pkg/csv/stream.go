package csv

import (
	"context"
	"errors"
	"io"
)

// Scanner provides a bufio-style interface for reading records one at a time.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner, err := csv.NewScanner(file, csv.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	r           *Reader
	ctx         context.Context
	dec         *Decoder
	reuseRecord bool
	row         []string
	err         error
	done        bool
}

// NewScanner creates a new Scanner that reads records from src.
func NewScanner(src io.Reader, opts Options) (*Scanner, error) {
	r, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		r:   r,
		ctx: context.Background(),
		dec: newDecoder(opts.BooleanDecoding),
	}, nil
}

// WithContext sets the context checked before each read from the source.
// Returns the Scanner for method chaining.
func (s *Scanner) WithContext(ctx context.Context) *Scanner {
	s.ctx = ctx
	return s
}

// SetReuseRecord sets whether records share storage with the scanner.
// When true, a Record is only valid until the next call to Scan.
// Returns the Scanner for method chaining.
func (s *Scanner) SetReuseRecord(reuse bool) *Scanner {
	s.reuseRecord = reuse
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	row, err := s.r.Next(s.ctx)
	if err != nil {
		s.done = true
		s.row = nil
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	if s.reuseRecord {
		s.row = row
	} else {
		s.row = append([]string(nil), row...)
	}
	return true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	return Record{fields: s.row, headers: s.r.headerRef()}
}

// Decode decodes the current record into the value pointed to by v.
func (s *Scanner) Decode(v any) error {
	s.dec.reset(s.row, s.r.headerRef())
	if err := s.dec.DecodeValue(v); err != nil {
		s.r.obs.DecodeFailed(err)
		return err
	}
	return nil
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns a copy of the column headers, or nil when the input has
// none. This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	if s.r.header == nil {
		return nil
	}
	return append([]string(nil), s.r.header...)
}
