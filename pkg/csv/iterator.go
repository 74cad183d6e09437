package csv

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"
)

// Iterator decodes each row into a T.
//
// T is populated through the Decoder: if *T implements Unmarshaler it decodes
// itself, otherwise tagged struct fields are filled by reflection.
//
//	type Person struct {
//	    Name string `csv:"name"`
//	    Age  int    `csv:"age"`
//	}
//
//	it, err := csv.NewIterator[Person](file, csv.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for p, err := range it.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(p.Name, p.Age)
//	}
type Iterator[T any] struct {
	r    *Reader
	dec  *Decoder
	busy atomic.Bool
}

// NewIterator validates opts and returns an Iterator over src.
func NewIterator[T any](src io.Reader, opts Options) (*Iterator[T], error) {
	r, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	return &Iterator[T]{
		r:   r,
		dec: newDecoder(opts.BooleanDecoding),
	}, nil
}

// Header returns a copy of the column names; see Reader.Header.
func (it *Iterator[T]) Header(ctx context.Context) ([]string, error) {
	return it.r.Header(ctx)
}

// Next decodes the next row, or returns io.EOF.
//
// Row arity and decode errors only concern the current row; the following
// call continues with the next one.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	var v T
	if !it.busy.CompareAndSwap(false, true) {
		return v, ErrConcurrentUse
	}
	defer it.busy.Store(false)

	row, err := it.r.Next(ctx)
	if err != nil {
		return v, err
	}
	it.dec.reset(row, it.r.headerRef())
	if err := it.dec.DecodeValue(&v); err != nil {
		it.r.obs.DecodeFailed(err)
		var zero T
		return zero, err
	}
	return v, nil
}

// All yields decoded values until the input is exhausted. Row-level errors
// are yielded and iteration continues; source errors end the sequence after
// being yielded.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := it.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(v, err) {
				return
			}
			if err != nil && !IsRowError(err) {
				return
			}
		}
	}
}

// ReadAll decodes every row of src into a slice, stopping at the first error.
func ReadAll[T any](ctx context.Context, src io.Reader, opts Options) ([]T, error) {
	it, err := NewIterator[T](src, opts)
	if err != nil {
		return nil, err
	}
	var out []T
	for {
		v, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// IsRowError reports whether err only concerns a single row, so reading can
// continue with the next one.
func IsRowError(err error) bool {
	var (
		arity       *RowArityError
		notFound    *KeyNotFoundError
		corrupted   *DataCorruptedError
		unsupported *UnsupportedTypeError
	)
	return errors.As(err, &arity) ||
		errors.As(err, &notFound) ||
		errors.As(err, &corrupted) ||
		errors.As(err, &unsupported) ||
		errors.Is(err, ErrKeyNotFound)
}
