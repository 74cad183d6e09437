package csv

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldDecoder is a pre-computed function that decodes the field at key into v.
type fieldDecoder func(d *Decoder, key Key, v reflect.Value) error

// structField describes one exported, tagged field of a target struct.
type structField struct {
	// index is the reflect.Value.FieldByIndex path; depth is its embedding level.
	index    []int
	depth    int
	key      Key
	optional bool
	decode   fieldDecoder
}

// structInfo holds cached decode metadata for a struct type.
type structInfo struct {
	fields []structField
}

var (
	// typeCache maps reflect.Type to *structInfo.
	typeCache sync.Map

	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	boolType            = reflect.TypeFor[bool]()
)

// getStructInfo retrieves or computes the metadata for structType.
func getStructInfo(structType reflect.Type) (*structInfo, error) {
	if cached, ok := typeCache.Load(structType); ok {
		return cached.(*structInfo), nil
	}
	info, err := computeStructInfo(structType)
	if err != nil {
		return nil, err
	}
	actual, _ := typeCache.LoadOrStore(structType, info)
	return actual.(*structInfo), nil
}

// computeStructInfo reads the csv tags of structType.
//
// Tag format:
//
//	Field int `csv:"column"`           // looked up by header name
//	Field int `csv:"column,index=2"`   // position 2 first, then the name
//	Field int `csv:",index=0"`         // position only (name defaults to the field name)
//	Field int `csv:"column,optional"`  // missing key leaves the zero value
//	Field int `csv:"-"`                // ignored
//	Field int                          // looked up by the field name
//
// The exported fields of an untagged embedded struct are promoted, as in
// encoding/json. A promoted field is dropped when a shallower field uses the
// same name; at equal depth the first one declared wins. Embedded pointers to
// structs are rejected with *UnsupportedTypeError.
func computeStructInfo(structType reflect.Type) (*structInfo, error) {
	var fields []structField
	if err := collectFields(structType, nil, 0, &fields); err != nil {
		return nil, err
	}
	return &structInfo{fields: dominantFields(fields)}, nil
}

func collectFields(structType reflect.Type, parent []int, depth int, out *[]structField) error {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag := field.Tag.Get("csv")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		index := append(append([]int(nil), parent...), i)

		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct {
				return &UnsupportedTypeError{Path: []string{field.Name}, Type: ft}
			}
			if ft.Kind() == reflect.Struct && !isUnmarshalTarget(ft) {
				if opts != "" {
					return fmt.Errorf("csv: %s.%s: tag options on an embedded struct", structType, field.Name)
				}
				if err := collectFields(ft, index, depth+1, out); err != nil {
					return err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		key := Named(field.Name)
		optional := false
		if name != "" {
			key.Name = name
		}
		for opts != "" {
			var opt string
			opt, opts, _ = strings.Cut(opts, ",")
			switch {
			case opt == "optional":
				optional = true
			case strings.HasPrefix(opt, "index="):
				n, err := strconv.Atoi(strings.TrimPrefix(opt, "index="))
				if err != nil || n < 0 {
					return fmt.Errorf("csv: %s.%s: invalid index in tag %q", structType, field.Name, tag)
				}
				key.Index = n
			default:
				return fmt.Errorf("csv: %s.%s: unknown tag option %q", structType, field.Name, opt)
			}
		}

		*out = append(*out, structField{
			index:    index,
			depth:    depth,
			key:      key,
			optional: optional,
			decode:   createFieldDecoder(field.Type),
		})
	}
	return nil
}

// dominantFields drops promoted fields hidden by a shallower or earlier
// field of the same name. Top-level fields are always kept.
func dominantFields(fields []structField) []structField {
	shallowest := make(map[string]int, len(fields))
	for _, f := range fields {
		if d, ok := shallowest[f.key.Name]; !ok || f.depth < d {
			shallowest[f.key.Name] = f.depth
		}
	}
	seen := make(map[string]bool, len(fields))
	kept := fields[:0]
	for _, f := range fields {
		if f.depth > 0 && (f.depth > shallowest[f.key.Name] || seen[f.key.Name]) {
			continue
		}
		seen[f.key.Name] = true
		kept = append(kept, f)
	}
	return kept
}

func isUnmarshalTarget(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerType) || pt.Implements(textUnmarshalerType)
}

// createFieldDecoder returns the decoder for a struct field of type t.
func createFieldDecoder(t reflect.Type) fieldDecoder {
	if isUnmarshalTarget(t) {
		return decodeNested
	}

	switch t.Kind() {
	case reflect.String:
		return func(d *Decoder, key Key, v reflect.Value) error {
			s, err := d.Lookup(key)
			if err != nil {
				return err
			}
			v.SetString(s)
			return nil
		}

	case reflect.Bool:
		return func(d *Decoder, key Key, v reflect.Value) error {
			b, err := d.Bool(key)
			if err != nil {
				return err
			}
			v.SetBool(b)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return func(d *Decoder, key Key, v reflect.Value) error {
			s, err := d.Lookup(key)
			if err != nil {
				return err
			}
			n, err := parseNumber(s, t)
			if err != nil {
				return d.corrupted(key, s, t, err)
			}
			v.Set(reflect.ValueOf(n).Convert(t))
			return nil
		}

	case reflect.Pointer:
		elem := createFieldDecoder(t.Elem())
		return func(d *Decoder, key Key, v reflect.Value) error {
			isNil, err := d.IsNil(key)
			if err != nil {
				return err
			}
			if isNil {
				v.SetZero()
				return nil
			}
			p := reflect.New(t.Elem())
			if err := elem(d, key, p.Elem()); err != nil {
				return err
			}
			v.Set(p)
			return nil
		}

	case reflect.Struct:
		return decodeNested

	default:
		return func(d *Decoder, key Key, v reflect.Value) error {
			return &UnsupportedTypeError{Path: append(d.Path(), key.String()), Type: t}
		}
	}
}

// decodeNested decodes the field's text as its own one-column record.
func decodeNested(d *Decoder, key Key, v reflect.Value) error {
	s, err := d.Lookup(key)
	if err != nil {
		return err
	}
	return decodeValue(d.narrow(key, s), v)
}

// clearStructCache drops all cached metadata. Used by tests.
func clearStructCache() {
	typeCache.Range(func(key, value any) bool {
		typeCache.Delete(key)
		return true
	})
}
