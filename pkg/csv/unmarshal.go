package csv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Unmarshal parses the CSV-encoded data and stores the result in the value
// pointed to by v. With no options, DefaultOptions is used.
//
// Unmarshal supports two target types:
//
// 1. [][]string - raw records, the header row first when present:
//
//	var records [][]string
//	err := csv.Unmarshal(data, &records)
//
// 2. []T - one decoded value per row:
//
//	type Person struct {
//	    Name string `csv:"name"`
//	    Age  int    `csv:"age"`
//	}
//	var people []Person
//	err := csv.Unmarshal(data, &people)
//
// The csv tag format is:
//
//	Field int `csv:"column_name"`            // Look the field up by column name
//	Field int `csv:"column_name,index=2"`    // Prefer column 2, fall back to the name
//	Field int `csv:",index=2"`               // Column 2 only
//	Field int `csv:"column_name,optional"`   // Leave the zero value if the column is absent
//	Field int `csv:"-"`                      // Always ignore this field
//	Field int                                 // Use struct field name as column name
//
// Decoding stops at the first error.
func Unmarshal(data []byte, v any, opts ...Options) error {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("csv: Unmarshal target must be a non-nil pointer to a slice, got %T", v)
	}
	if records, ok := v.(*[][]string); ok {
		return unmarshalRecords(data, records, o)
	}

	ctx := context.Background()
	r, err := NewReader(bytes.NewReader(data), o)
	if err != nil {
		return err
	}
	dec := newDecoder(o.BooleanDecoding)
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	out := reflect.MakeSlice(slice.Type(), 0, 0)
	for {
		row, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		dec.reset(row, r.headerRef())
		elem := reflect.New(elemType)
		if err := decodeValue(dec, elem.Elem()); err != nil {
			r.obs.DecodeFailed(err)
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	slice.Set(out)
	return nil
}

func unmarshalRecords(data []byte, records *[][]string, opts Options) error {
	r, err := NewReader(bytes.NewReader(data), opts)
	if err != nil {
		return err
	}
	ctx := context.Background()
	header, err := r.Header(ctx)
	if err != nil {
		return err
	}
	var out [][]string
	if header != nil {
		out = append(out, header)
	}
	for {
		row, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		out = append(out, append([]string(nil), row...))
	}
	*records = out
	return nil
}
