package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")

	type row struct {
		N int `csv:"n"`
	}

	opts := csv.DefaultOptions()
	opts.SkipInvalidRows = true
	opts.Observer = c

	it, err := csv.NewIterator[row](strings.NewReader("n\n1\nx\n2,3\n4\n"), opts)
	require.NoError(t, err)
	for range it.All(context.Background()) {
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(c.rowsRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rowsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decodeFailures.WithLabelValues("data_corrupted")))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCollector_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg, "a")
	NewCollector(reg, "b")

	assert.Panics(t, func() { NewCollector(reg, "a") })
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&csv.DataCorruptedError{Err: errors.New("bad")}, "data_corrupted"},
		{&csv.KeyNotFoundError{Key: csv.Named("x")}, "key_not_found"},
		{csv.ErrKeyNotFound, "key_not_found"},
		{&csv.UnsupportedTypeError{Type: reflect.TypeFor[[]int]()}, "unsupported_type"},
		{errors.New("other"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}
