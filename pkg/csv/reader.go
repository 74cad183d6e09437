package csv

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Reader returns the rows of a delimiter-separated stream one at a time.
//
// A Reader owns its source and buffers and is meant for a single consumer.
// Rows returned by Next share storage with the next call; copy a row to keep it.
//
//	r, err := csv.NewReader(file, csv.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for {
//	    row, err := r.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(row)
//	}
type Reader struct {
	tok   *tokenizer.Tokenizer
	opts  Options
	log   *zap.Logger
	obs   Observer
	arity arityPolicy

	header         []string
	headerCaptured bool

	busy atomic.Bool
}

// NewReader validates opts and returns a Reader over src. Nothing is read
// from src until the first call to Header or Next.
func NewReader(src io.Reader, opts Options) (*Reader, error) {
	tok, err := tokenizer.New(src, opts.tokenizerConfig())
	if err != nil {
		return nil, configError(err)
	}
	if err := opts.BooleanDecoding.validate(); err != nil {
		return nil, err
	}
	return &Reader{
		tok:   tok,
		opts:  opts,
		log:   opts.logger(),
		obs:   opts.observer(),
		arity: arityPolicy{skip: opts.SkipInvalidRows},
	}, nil
}

// Header returns a copy of the column names, reading the first row if needed.
// It returns nil when HasHeaders is false or the input is empty.
//
// Header shares the Next guard: a call made while Next is running returns
// ErrConcurrentUse.
func (r *Reader) Header(ctx context.Context) ([]string, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrConcurrentUse
	}
	defer r.busy.Store(false)

	if err := r.captureHeader(ctx); err != nil {
		return nil, err
	}
	if r.header == nil {
		return nil, nil
	}
	return append([]string(nil), r.header...), nil
}

// RecordNumber returns the 1-based ordinal of the last row read, header included.
func (r *Reader) RecordNumber() int {
	return r.tok.Rows()
}

// Next returns the next row that passes the arity check, or io.EOF.
//
// A *RowArityError only concerns the offending row; calling Next again
// continues with the following one. Source errors and cancellation are final.
func (r *Reader) Next(ctx context.Context) ([]string, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrConcurrentUse
	}
	defer r.busy.Store(false)

	if err := r.captureHeader(ctx); err != nil {
		return nil, err
	}
	return r.next(ctx)
}

func (r *Reader) next(ctx context.Context) ([]string, error) {
	for {
		row, err := r.tok.Next(ctx)
		if err != nil {
			r.sourceError(err)
			return nil, err
		}
		r.obs.RowRead(len(row))

		ok, err := r.arity.check(r.tok.Rows(), row)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.log.Debug("skipping row with wrong field count",
				zap.Int("record", r.tok.Rows()),
				zap.Int("fields", len(row)),
				zap.Int("expected", r.arity.expected))
			r.obs.RowSkipped(len(row), r.arity.expected)
			continue
		}
		return row, nil
	}
}

func (r *Reader) captureHeader(ctx context.Context) error {
	if r.headerCaptured || !r.opts.HasHeaders {
		return nil
	}
	row, err := r.tok.Next(ctx)
	if errors.Is(err, io.EOF) {
		r.headerCaptured = true
		return nil
	}
	if err != nil {
		r.sourceError(err)
		return err
	}
	r.obs.RowRead(len(row))
	r.header = append([]string(nil), row...)
	r.headerCaptured = true
	r.arity.establish(len(r.header))
	r.log.Debug("captured header", zap.Strings("columns", r.header))
	return nil
}

func (r *Reader) sourceError(err error) {
	if errors.Is(err, io.EOF) {
		return
	}
	r.log.Warn("csv source failed", zap.Int("record", r.tok.Rows()), zap.Error(err))
}

// headerRef returns the captured header without copying.
func (r *Reader) headerRef() []string {
	return r.header
}
