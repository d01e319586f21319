package resp

import (
	"reflect"
)

// encodeValue announces v to s, using Marshaler when v implements it
// and the shape of its Go kind otherwise
func encodeValue(s Serializer, v any) error {
	switch x := v.(type) {
	case nil:
		return s.None()
	case Marshaler:
		if isNil(reflect.ValueOf(x)) {
			return s.None()
		}
		return x.MarshalRESP(s)
	case []byte:
		return s.Bytes(x)
	case string:
		return s.String(x)
	case int64:
		return s.Int(x)
	case int:
		return s.Int(int64(x))
	case bool:
		return s.Bool(x)
	}
	return encodeReflect(s, reflect.ValueOf(v))
}

// isNil reports whether rv is a nil value of a kind that can hold nil
func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func encodeReflect(s Serializer, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		return s.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return s.Float(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		return unsupported("complex numbers")
	case reflect.String:
		return s.String(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return s.Bytes(nil)
			}
			return s.Bytes(rv.Bytes())
		}
		return encodeSeq(s, rv)
	case reflect.Array:
		return unsupported("tuples")
	case reflect.Map:
		return unsupported("maps")
	case reflect.Struct:
		if rv.NumField() == 0 {
			return s.Unit()
		}
		return unsupported("structs")
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return s.None()
		}
		return s.Some(rv.Elem().Interface())
	}
	return unsupported(rv.Kind().String())
}

func encodeSeq(s Serializer, rv reflect.Value) error {
	n := rv.Len()
	seq, err := s.Seq(n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := seq.Element(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return seq.End()
}
