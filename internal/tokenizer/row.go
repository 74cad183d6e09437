package tokenizer

// rowBuffer holds the raw bytes of every field of the current row in one arena.
// Field i spans data[bounds[2i]:bounds[2i+1]]. Both slices are truncated, not
// reallocated, between rows, so memory stays proportional to the longest row.
type rowBuffer struct {
	data   []byte
	bounds []int

	fieldStart int
	// opened is set when a quote opened the current field, so `""` still
	// counts as a field at end of input.
	opened bool
}

func newRowBuffer() *rowBuffer {
	return &rowBuffer{
		data:   make([]byte, 0, 512),
		bounds: make([]int, 0, 32),
	}
}

func (b *rowBuffer) reset() {
	b.data = b.data[:0]
	b.bounds = b.bounds[:0]
	b.fieldStart = 0
	b.opened = false
}

// atFieldStart reports whether no byte has been accumulated for the current field.
func (b *rowBuffer) atFieldStart() bool {
	return len(b.data) == b.fieldStart
}

func (b *rowBuffer) appendByte(c byte) {
	b.data = append(b.data, c)
}

// closeField records the boundaries of the current field and starts the next one.
func (b *rowBuffer) closeField() {
	b.bounds = append(b.bounds, b.fieldStart, len(b.data))
	b.fieldStart = len(b.data)
	b.opened = false
}

// pending reports whether anything belongs to the row being built.
func (b *rowBuffer) pending() bool {
	return len(b.bounds) > 0 || len(b.data) > b.fieldStart || b.opened
}

func (b *rowBuffer) numFields() int {
	return len(b.bounds) / 2
}

// fieldBytes returns the raw bytes of field i. The slice aliases the arena.
func (b *rowBuffer) fieldBytes(i int) []byte {
	return b.data[b.bounds[2*i]:b.bounds[2*i+1]]
}
