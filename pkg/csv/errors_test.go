package csv_test

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config",
			err:  &csv.ConfigError{Field: "Delimiter", Err: errors.New("not a single byte")},
			want: "csv: invalid Delimiter: not a single byte",
		},
		{
			name: "arity",
			err:  &csv.RowArityError{Record: 3, Expected: 3, Fields: []string{"1", "2"}},
			want: "csv: record 3: wrong number of fields: got 2, want 3",
		},
		{
			name: "key not found at record level",
			err:  &csv.KeyNotFoundError{Key: csv.Named("age")},
			want: "csv: <record>: key not found: age",
		},
		{
			name: "key not found nested",
			err:  &csv.KeyNotFoundError{Key: csv.Positional(1), Path: []string{"pair"}},
			want: "csv: pair: key not found: #1",
		},
		{
			name: "corrupted",
			err: &csv.DataCorruptedError{
				Path:  []string{"age"},
				Value: "x",
				Type:  reflect.TypeFor[int](),
				Err:   strconv.ErrSyntax,
			},
			want: `csv: age: cannot decode "x" as int: invalid syntax`,
		},
		{
			name: "unsupported",
			err:  &csv.UnsupportedTypeError{Path: []string{"tags"}, Type: reflect.TypeFor[[]string]()},
			want: "csv: tags: unsupported type []string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, &csv.ConfigError{Field: "Delimiter", Err: cause}, cause)
	assert.ErrorIs(t, &csv.RowArityError{}, csv.ErrFieldCount)
	assert.ErrorIs(t, &csv.KeyNotFoundError{Key: csv.Named("x")}, csv.ErrKeyNotFound)
	assert.ErrorIs(t, &csv.DataCorruptedError{Err: csv.ErrInvalidBoolean}, csv.ErrInvalidBoolean)
}

func TestIsRowError(t *testing.T) {
	assert.True(t, csv.IsRowError(&csv.RowArityError{}))
	assert.True(t, csv.IsRowError(&csv.KeyNotFoundError{}))
	assert.True(t, csv.IsRowError(&csv.DataCorruptedError{Err: strconv.ErrRange}))
	assert.True(t, csv.IsRowError(&csv.UnsupportedTypeError{Type: reflect.TypeFor[[]int]()}))
	assert.False(t, csv.IsRowError(errors.New("disk on fire")))
	assert.False(t, csv.IsRowError(csv.ErrConcurrentUse))
}
