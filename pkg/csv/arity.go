package csv

// arityPolicy enforces that every row after the first has the same width.
type arityPolicy struct {
	expected int
	known    bool
	skip     bool
}

// establish fixes the expected width if it is not known yet.
func (p *arityPolicy) establish(width int) {
	if !p.known {
		p.expected = width
		p.known = true
	}
}

// check reports whether row is accepted. A rejected row either yields a
// *RowArityError or, when skipping, false with a nil error.
func (p *arityPolicy) check(record int, row []string) (bool, error) {
	if !p.known {
		p.establish(len(row))
		return true, nil
	}
	if len(row) == p.expected {
		return true, nil
	}
	if p.skip {
		return false, nil
	}
	return false, &RowArityError{
		Record:   record,
		Expected: p.expected,
		Fields:   append([]string(nil), row...),
	}
}
