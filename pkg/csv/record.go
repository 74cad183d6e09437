package csv

// Record represents a single row with access by index or by header name.
type Record struct {
	fields  []string
	headers []string
}

// Get gets the field value at the specified index.
// Returns (value, false) if the index is out of bounds.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns (value, false) if the name is not a column or no headers are set.
// When a name is repeated, the first column wins.
//
// Example:
//
//	name, ok := record.GetByName("name")
//	if !ok {
//	    // Header "name" not found or no headers set
//	}
func (r Record) GetByName(name string) (string, bool) {
	for i, header := range r.headers {
		if header == name {
			return r.Get(i)
		}
	}
	return "", false
}

// Fields returns a copy of the field values.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}
