package csv

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Key identifies a field by name, by position, or by both. When a key carries
// a position inside the row, the position wins even if a header exists.
type Key struct {
	Name string
	// Index is the 0-based column position. A negative Index means the key
	// has no position.
	Index int
}

// Named returns a key that is resolved through the header.
func Named(name string) Key {
	return Key{Name: name, Index: -1}
}

// Positional returns a key that is resolved by column position.
func Positional(index int) Key {
	return Key{Index: index}
}

// NamedAt returns a key with both a name and a position.
func NamedAt(name string, index int) Key {
	return Key{Name: name, Index: index}
}

func (k Key) String() string {
	switch {
	case k.Name != "":
		return k.Name
	case k.Index >= 0:
		return "#" + strconv.Itoa(k.Index)
	default:
		return "<unnamed>"
	}
}

// Unmarshaler is implemented by types that decode themselves from a row.
//
// For a field of such a type, d is a narrowed context holding only that
// field's text as a single header-less column, so d.SingleValue returns it.
type Unmarshaler interface {
	UnmarshalCSV(d *Decoder) error
}

// Decoder exposes the fields of one row to decode logic.
//
// A Decoder is only valid during the decode call it was passed to. It never
// modifies the row or the header.
type Decoder struct {
	row      []string
	header   []string
	booleans BooleanDecodingBehavior
	path     []string

	// byName is built on the first name lookup of a row.
	byName  map[string]string
	indexed bool
}

func newDecoder(booleans BooleanDecodingBehavior) *Decoder {
	return &Decoder{booleans: booleans}
}

// NewDecoder returns a Decoder over a single row. It is mostly useful for
// testing Unmarshaler implementations; readers build their own.
func NewDecoder(row, header []string, booleans BooleanDecodingBehavior) *Decoder {
	d := newDecoder(booleans)
	d.reset(row, header)
	return d
}

// reset points the decoder at the next row and drops the name index.
func (d *Decoder) reset(row, header []string) {
	d.row = row
	d.header = header
	d.indexed = false
}

// narrow returns a child context exposing only text as a one-column row.
func (d *Decoder) narrow(key Key, text string) *Decoder {
	path := make([]string, len(d.path), len(d.path)+1)
	copy(path, d.path)
	return &Decoder{
		row:      []string{text},
		booleans: d.booleans,
		path:     append(path, key.String()),
	}
}

// Len returns the number of fields in the current row.
func (d *Decoder) Len() int {
	return len(d.row)
}

// Header returns the column names, or nil for header-less sessions and
// narrowed contexts. The slice must not be modified.
func (d *Decoder) Header() []string {
	return d.header
}

// Path returns the keys leading from the record to this context.
func (d *Decoder) Path() []string {
	return append([]string(nil), d.path...)
}

// Lookup resolves key to the field text.
func (d *Decoder) Lookup(key Key) (string, error) {
	if key.Index >= 0 && key.Index < len(d.row) {
		return d.row[key.Index], nil
	}
	if d.header != nil && key.Name != "" {
		if v, ok := d.lookupName(key.Name); ok {
			return v, nil
		}
	}
	return "", &KeyNotFoundError{Key: key, Path: d.Path()}
}

func (d *Decoder) lookupName(name string) (string, bool) {
	if !d.indexed {
		if d.byName == nil {
			d.byName = make(map[string]string, len(d.header))
		} else {
			clear(d.byName)
		}
		for i, h := range d.header {
			if i >= len(d.row) {
				break
			}
			if _, dup := d.byName[h]; !dup {
				d.byName[h] = d.row[i]
			}
		}
		d.indexed = true
	}
	v, ok := d.byName[name]
	return v, ok
}

// Contains reports whether key resolves in the current row.
func (d *Decoder) Contains(key Key) bool {
	_, err := d.Lookup(key)
	return err == nil
}

// String returns the field text unchanged.
func (d *Decoder) String(key Key) (string, error) {
	return d.Lookup(key)
}

// IsNil reports whether the field is empty, which is how absence is written.
func (d *Decoder) IsNil(key Key) (bool, error) {
	s, err := d.Lookup(key)
	if err != nil {
		return false, err
	}
	return s == "", nil
}

// Bool decodes the field with the session's BooleanDecodingBehavior.
func (d *Decoder) Bool(key Key) (bool, error) {
	s, err := d.Lookup(key)
	if err != nil {
		return false, err
	}
	b, err := d.booleans.Decode(s)
	if err != nil {
		return false, d.corrupted(key, s, boolType, err)
	}
	return b, nil
}

// Int decodes the field as an int.
func (d *Decoder) Int(key Key) (int, error) {
	return Number[int](d, key)
}

// Int64 decodes the field as an int64.
func (d *Decoder) Int64(key Key) (int64, error) {
	return Number[int64](d, key)
}

// Uint64 decodes the field as a uint64.
func (d *Decoder) Uint64(key Key) (uint64, error) {
	return Number[uint64](d, key)
}

// Float64 decodes the field as a float64.
func (d *Decoder) Float64(key Key) (float64, error) {
	return Number[float64](d, key)
}

// SingleValue returns the only field of a one-column context, which is what
// an Unmarshaler for a nested field sees.
func (d *Decoder) SingleValue() (string, error) {
	if len(d.row) != 1 {
		return "", fmt.Errorf("csv: %s: single value requested from %d fields: %w", pathString(d.path), len(d.row), ErrKeyNotFound)
	}
	return d.row[0], nil
}

// Decode resolves key and decodes its text into target, a non-nil pointer.
// The text is decoded as a one-column, header-less row, so target may be an
// Unmarshaler that splits a packed value, a tagged struct using positional
// keys, an encoding.TextUnmarshaler, or a primitive.
func (d *Decoder) Decode(key Key, target any) error {
	s, err := d.Lookup(key)
	if err != nil {
		return err
	}
	return d.narrow(key, s).DecodeValue(target)
}

// DecodeValue decodes the whole context into target, a non-nil pointer.
func (d *Decoder) DecodeValue(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("csv: decode target must be a non-nil pointer, got %T", target)
	}
	return decodeValue(d, rv.Elem())
}

func (d *Decoder) corrupted(key Key, value string, t reflect.Type, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return &DataCorruptedError{
		Path:  append(d.Path(), key.String()),
		Value: value,
		Type:  t,
		Err:   err,
	}
}

// Integer is the set of integer types Number can decode.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float is the set of floating-point types Number can decode.
type Float interface {
	~float32 | ~float64
}

// Number decodes the field at key into T using a strict base-10 parse at T's
// exact width, so "256" fails for uint8.
func Number[T Integer | Float](d *Decoder, key Key) (T, error) {
	s, err := d.Lookup(key)
	if err != nil {
		return 0, err
	}
	t := reflect.TypeFor[T]()
	v, err := parseNumber(s, t)
	if err != nil {
		return 0, d.corrupted(key, s, t, err)
	}
	return reflect.ValueOf(v).Convert(t).Interface().(T), nil
}

// parseNumber returns an int64, uint64 or float64 sized for t.
func parseNumber(s string, t reflect.Type) (any, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(s, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.ParseUint(s, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		// ParseFloat takes Go digit separators; CSV text never carries them.
		if strings.Contains(s, "_") {
			return nil, strconv.ErrSyntax
		}
		return strconv.ParseFloat(s, t.Bits())
	}
	return nil, fmt.Errorf("%s is not numeric", t)
}
