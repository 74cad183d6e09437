package csv

import (
	"encoding"
	"errors"
	"reflect"
)

// decodeValue populates v from the whole context d.
func decodeValue(d *Decoder, v reflect.Value) error {
	if v.CanAddr() {
		switch u := v.Addr().Interface().(type) {
		case Unmarshaler:
			return u.UnmarshalCSV(d)
		case encoding.TextUnmarshaler:
			s, err := d.SingleValue()
			if err != nil {
				return err
			}
			if err := u.UnmarshalText([]byte(s)); err != nil {
				return &DataCorruptedError{Path: d.Path(), Value: s, Type: v.Type(), Err: err}
			}
			return nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return decodeStruct(d, v)

	case reflect.Pointer:
		if len(d.row) == 1 && d.row[0] == "" {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeValue(d, v.Elem())

	case reflect.Slice, reflect.Array, reflect.Map, reflect.Interface,
		reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return &UnsupportedTypeError{Path: d.Path(), Type: v.Type()}
	}

	if _, err := d.SingleValue(); err != nil {
		return err
	}
	return createFieldDecoder(v.Type())(d, Positional(0), v)
}

func decodeStruct(d *Decoder, v reflect.Value) error {
	info, err := getStructInfo(v.Type())
	if err != nil {
		return err
	}
	for _, f := range info.fields {
		err := f.decode(d, f.key, v.FieldByIndex(f.index))
		if err == nil {
			continue
		}
		var notFound *KeyNotFoundError
		if f.optional && errors.As(err, &notFound) && notFound.Key == f.key && len(notFound.Path) == len(d.path) {
			continue
		}
		return err
	}
	return nil
}
