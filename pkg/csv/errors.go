package csv

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors. Each typed error below unwraps to one of these so callers
// can branch with errors.Is.
var (
	// ErrFieldCount indicates a row has the wrong number of fields.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrKeyNotFound indicates a field could not be resolved by position or name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidBoolean indicates a field is not a literal of the boolean behavior.
	ErrInvalidBoolean = errors.New("not a valid boolean literal")

	// ErrBooleanDecodingDisabled is returned for every boolean decode when the
	// session uses BooleanDisabled.
	ErrBooleanDecodingDisabled = errors.New("boolean decoding is disabled, change Options.BooleanDecoding")

	// ErrConcurrentUse is returned when Next is called while another Next on
	// the same reader is still running.
	ErrConcurrentUse = errors.New("csv: concurrent use of a single-owner reader")
)

// ConfigError reports an option that cannot be used. It is only returned when
// a reader is created, never while rows are read.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RowArityError reports a row whose field count differs from the header, or
// from the first row when there is no header.
type RowArityError struct {
	// Record is the 1-based ordinal of the row in the input, header included.
	Record   int
	Expected int
	Fields   []string
}

func (e *RowArityError) Error() string {
	return fmt.Sprintf("csv: record %d: %v: got %d, want %d", e.Record, ErrFieldCount, len(e.Fields), e.Expected)
}

func (e *RowArityError) Unwrap() error {
	return ErrFieldCount
}

// KeyNotFoundError reports a field that is neither at a usable position nor
// present in the header.
type KeyNotFoundError struct {
	Key  Key
	Path []string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("csv: %s: %v: %s", pathString(e.Path), ErrKeyNotFound, e.Key)
}

func (e *KeyNotFoundError) Unwrap() error {
	return ErrKeyNotFound
}

// DataCorruptedError reports field text that cannot be converted to the
// requested type.
type DataCorruptedError struct {
	Path  []string
	Value string
	Type  reflect.Type
	Err   error
}

func (e *DataCorruptedError) Error() string {
	return fmt.Sprintf("csv: %s: cannot decode %q as %s: %v", pathString(e.Path), e.Value, e.Type, e.Err)
}

func (e *DataCorruptedError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError reports a target the decoder cannot populate, such as
// slices, maps, or interfaces.
type UnsupportedTypeError struct {
	Path []string
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("csv: %s: unsupported type %s", pathString(e.Path), e.Type)
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "<record>"
	}
	return strings.Join(path, ".")
}
