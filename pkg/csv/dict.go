package csv

import (
	"context"
	"io"
)

// DictReader returns each row as a map from column name to field text.
// The first row is always used as the header.
type DictReader struct {
	r *Reader
}

// NewDictReader returns a DictReader over src. opts.HasHeaders is ignored.
func NewDictReader(src io.Reader, opts Options) (*DictReader, error) {
	opts.HasHeaders = true
	r, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	return &DictReader{r: r}, nil
}

// Header returns a copy of the column names.
func (d *DictReader) Header(ctx context.Context) ([]string, error) {
	return d.r.Header(ctx)
}

// Next returns the next row as a new map, or io.EOF. When a column name is
// repeated, the first column wins.
func (d *DictReader) Next(ctx context.Context) (map[string]string, error) {
	row, err := d.r.Next(ctx)
	if err != nil {
		return nil, err
	}
	header := d.r.headerRef()
	m := make(map[string]string, len(header))
	for i, name := range header {
		if _, dup := m[name]; !dup && i < len(row) {
			m[name] = row[i]
		}
	}
	return m, nil
}
