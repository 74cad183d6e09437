package csv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, input string, hasHeaders bool) *Scanner {
	t.Helper()
	opts := DefaultOptions()
	opts.HasHeaders = hasHeaders
	s, err := NewScanner(strings.NewReader(input), opts)
	require.NoError(t, err)
	return s
}

// TestStreamRecords tests streaming records one at a time
func TestStreamRecords(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		hasHeaders bool
		want       []Record
	}{
		{
			name:       "simple CSV with headers",
			input:      "name,age\nAlice,30\nBob,25\n",
			hasHeaders: true,
			want: []Record{
				{fields: []string{"Alice", "30"}, headers: []string{"name", "age"}},
				{fields: []string{"Bob", "25"}, headers: []string{"name", "age"}},
			},
		},
		{
			name:       "CSV without headers",
			input:      "Alice,30\nBob,25\n",
			hasHeaders: false,
			want: []Record{
				{fields: []string{"Alice", "30"}},
				{fields: []string{"Bob", "25"}},
			},
		},
		{
			name:       "empty CSV",
			input:      "",
			hasHeaders: false,
		},
		{
			name:       "CSV with empty fields",
			input:      "a,b,c\n1,,3\n,,\n",
			hasHeaders: true,
			want: []Record{
				{fields: []string{"1", "", "3"}, headers: []string{"a", "b", "c"}},
				{fields: []string{"", "", ""}, headers: []string{"a", "b", "c"}},
			},
		},
		{
			name:       "CSV with quoted fields",
			input:      "name,description\nItem1,\"Has, comma\"\nItem2,\"Has \"\"quotes\"\"\"\n",
			hasHeaders: true,
			want: []Record{
				{fields: []string{"Item1", "Has, comma"}, headers: []string{"name", "description"}},
				{fields: []string{"Item2", "Has \"quotes\""}, headers: []string{"name", "description"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := newTestScanner(t, tt.input, tt.hasHeaders)

			var got []Record
			for scanner.Scan() {
				got = append(got, scanner.Record())
			}
			require.NoError(t, scanner.Err())
			assert.Equal(t, tt.want, got)
			assert.False(t, scanner.Scan(), "Scan after the end")
		})
	}
}

// TestScanner_Headers tests header capture
func TestScanner_Headers(t *testing.T) {
	scanner := newTestScanner(t, "id,name\n1,Alice\n", true)
	assert.Nil(t, scanner.Headers(), "headers before the first Scan")
	require.True(t, scanner.Scan())
	assert.Equal(t, []string{"id", "name"}, scanner.Headers())

	scanner = newTestScanner(t, "1,Alice\n", false)
	require.True(t, scanner.Scan())
	assert.Nil(t, scanner.Headers())
}

// TestScanner_RecordsAreIndependent tests that records survive later scans
func TestScanner_RecordsAreIndependent(t *testing.T) {
	scanner := newTestScanner(t, "a\n1\n2\n", true)
	require.True(t, scanner.Scan())
	first := scanner.Record()
	require.True(t, scanner.Scan())

	v, ok := first.Get(0)
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

// TestScanner_ReuseRecord tests that reused records share row storage
func TestScanner_ReuseRecord(t *testing.T) {
	scanner := newTestScanner(t, "a\n1\n2\n", true).SetReuseRecord(true)
	require.True(t, scanner.Scan())
	first := scanner.Record()
	require.True(t, scanner.Scan())
	second := scanner.Record()

	assert.Same(t, &first.fields[0], &second.fields[0])
	v, _ := second.Get(0)
	assert.Equal(t, "2", v)
}

// TestScanner_Error tests that Scan stops on the first error
func TestScanner_Error(t *testing.T) {
	scanner := newTestScanner(t, "a,b\n1,2\n3\n4,5\n", true)
	require.True(t, scanner.Scan())
	assert.False(t, scanner.Scan())
	assert.ErrorIs(t, scanner.Err(), ErrFieldCount)
	assert.False(t, scanner.Scan())
}

// TestScanner_WithContext tests cancellation through WithContext
func TestScanner_WithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := newTestScanner(t, "a\n1\n", true).WithContext(ctx)
	assert.False(t, scanner.Scan())
	assert.True(t, errors.Is(scanner.Err(), context.Canceled))
}

// TestScanner_Decode tests decoding the current record
func TestScanner_Decode(t *testing.T) {
	type row struct {
		Name string `csv:"name"`
		Age  uint8  `csv:"age"`
	}

	scanner := newTestScanner(t, "name,age\nAlice,30\nBob,300\n", true)
	require.True(t, scanner.Scan())
	var r row
	require.NoError(t, scanner.Decode(&r))
	assert.Equal(t, row{Name: "Alice", Age: 30}, r)

	require.True(t, scanner.Scan())
	var corrupted *DataCorruptedError
	assert.ErrorAs(t, scanner.Decode(&r), &corrupted)
}

// TestRecord_Access tests index and name access
func TestRecord_Access(t *testing.T) {
	r := Record{fields: []string{"1", "Alice", "x"}, headers: []string{"id", "name", "id"}}

	tests := []struct {
		name   string
		get    func() (string, bool)
		want   string
		wantOK bool
	}{
		{"index", func() (string, bool) { return r.Get(1) }, "Alice", true},
		{"negative index", func() (string, bool) { return r.Get(-1) }, "", false},
		{"index out of range", func() (string, bool) { return r.Get(3) }, "", false},
		{"name", func() (string, bool) { return r.GetByName("name") }, "Alice", true},
		{"duplicate name takes first", func() (string, bool) { return r.GetByName("id") }, "1", true},
		{"unknown name", func() (string, bool) { return r.GetByName("age") }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.get()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	noHeaders := Record{fields: []string{"1"}}
	_, ok := noHeaders.GetByName("id")
	assert.False(t, ok)
}

// TestRecord_Fields tests that Fields returns a copy
func TestRecord_Fields(t *testing.T) {
	r := Record{fields: []string{"a", "b"}}
	fields := r.Fields()
	fields[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, r.Fields())
	assert.Equal(t, 2, r.Len())
}
