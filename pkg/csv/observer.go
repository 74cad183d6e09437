package csv

// Observer receives counters from a parsing session. Implementations are
// called synchronously from Next and must not block.
type Observer interface {
	// RowRead is called for every tokenized row, header included.
	RowRead(fields int)
	// RowSkipped is called when SkipInvalidRows drops a row.
	RowSkipped(fields int, expected int)
	// DecodeFailed is called when a row fails to decode into a typed value.
	DecodeFailed(err error)
}

type nopObserver struct{}

func (nopObserver) RowRead(int)         {}
func (nopObserver) RowSkipped(int, int) {}
func (nopObserver) DecodeFailed(error)  {}
