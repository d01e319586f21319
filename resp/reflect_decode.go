package resp

import (
	"reflect"
)

// Unmarshaler is implemented by types that build themselves from a decoded Value
type Unmarshaler interface {
	UnmarshalRESP(v Value) error
}

func newReflectVisitor(v any) (Visitor, error) {
	if pv, ok := v.(*Value); ok && pv != nil {
		return valueBuilder{dst: pv}, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, Errorf("cannot decode into non-pointer %T", v)
	}
	return reflectVisitor{rv: rv.Elem()}, nil
}

// reflectVisitor stores decoded tokens into a settable Go value
type reflectVisitor struct {
	rv reflect.Value
}

// indirect walks through pointers, allocating them as needed, until it reaches
// an Unmarshaler or a value that is not a pointer. For null tokens it stops at
// the first pointer so that the pointer itself can be cleared
func indirect(rv reflect.Value, null bool) (Unmarshaler, reflect.Value) {
	for {
		if rv.Kind() != reflect.Pointer && rv.CanAddr() {
			if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
				return u, reflect.Value{}
			}
		}
		if rv.Kind() != reflect.Pointer || null {
			return nil, rv
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
}

// setAny assigns x to an interface-typed rv when x satisfies it
func setAny(rv reflect.Value, x any) bool {
	if rv.Kind() != reflect.Interface {
		return false
	}
	xv := reflect.ValueOf(x)
	if !xv.Type().AssignableTo(rv.Type()) {
		return false
	}
	rv.Set(xv)
	return true
}

func isByteSlice(rv reflect.Value) bool {
	return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
}

func mismatch(t Type, rv reflect.Value) error {
	return Errorf("cannot decode %s into Go value of type %s", t, rv.Type())
}

func (r reflectVisitor) text(t Type, s []byte) error {
	u, rv := indirect(r.rv, false)
	if u != nil {
		return u.UnmarshalRESP(Value{Type: t, String: clone(s)})
	}
	switch {
	case rv.Kind() == reflect.String:
		rv.SetString(string(s))
		return nil
	case isByteSlice(rv):
		rv.SetBytes(clone(s))
		return nil
	case t == TypeError && setAny(rv, ErrorReply(s)):
		return nil
	case t == TypeSimpleString && setAny(rv, string(s)):
		return nil
	case t == TypeBulkString && setAny(rv, clone(s)):
		return nil
	}
	return mismatch(t, rv)
}

func (r reflectVisitor) VisitSimpleString(s []byte) error {
	return r.text(TypeSimpleString, s)
}

func (r reflectVisitor) VisitError(s []byte) error {
	return r.text(TypeError, s)
}

func (r reflectVisitor) VisitBulkString(s []byte) error {
	if s == nil {
		return r.null(MakeNilBulkString())
	}
	return r.text(TypeBulkString, s)
}

func (r reflectVisitor) VisitInt(n int64) error {
	u, rv := indirect(r.rv, false)
	if u != nil {
		return u.UnmarshalRESP(MakeInteger(n))
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(n) {
			return Errorf("integer %d overflows %s", n, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n < 0 {
			return Errorf("negative integer %d cannot be stored in %s", n, rv.Type())
		}
		if rv.OverflowUint(uint64(n)) {
			return Errorf("integer %d overflows %s", n, rv.Type())
		}
		rv.SetUint(uint64(n))
		return nil
	}
	if setAny(rv, n) {
		return nil
	}
	return mismatch(TypeInteger, rv)
}

func (r reflectVisitor) VisitUint(n uint64) error {
	u, rv := indirect(r.rv, false)
	if u != nil {
		return Errorf("integer %d overflows int64", n)
	}
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.OverflowUint(n) {
			return Errorf("integer %d overflows %s", n, rv.Type())
		}
		rv.SetUint(n)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Errorf("integer %d overflows %s", n, rv.Type())
	}
	if setAny(rv, n) {
		return nil
	}
	return mismatch(TypeInteger, rv)
}

func (r reflectVisitor) VisitBool(b bool) error {
	u, rv := indirect(r.rv, false)
	if u != nil {
		return u.UnmarshalRESP(MakeBoolean(b))
	}
	if rv.Kind() == reflect.Bool {
		rv.SetBool(b)
		return nil
	}
	if setAny(rv, b) {
		return nil
	}
	return mismatch(TypeBoolean, rv)
}

func (r reflectVisitor) VisitNull() error {
	return r.null(MakeNull())
}

// null clears optional targets. Non-optional targets reject it
func (r reflectVisitor) null(v Value) error {
	u, rv := indirect(r.rv, true)
	if u != nil {
		return u.UnmarshalRESP(v)
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Map:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case reflect.Struct:
		if rv.NumField() == 0 {
			return nil
		}
	}
	return mismatch(v.Type, rv)
}

func (r reflectVisitor) VisitArray(n int) (ArrayVisitor, error) {
	if n < 0 {
		return nil, r.null(MakeNilArray())
	}
	u, rv := indirect(r.rv, false)
	if u != nil {
		v := new(Value)
		av, err := valueBuilder{dst: v}.VisitArray(n)
		if err != nil {
			return nil, err
		}
		return &unmarshalArray{ArrayVisitor: av, u: u, v: v}, nil
	}
	switch {
	case rv.Kind() == reflect.Slice && !isByteSlice(rv):
		rv.Set(reflect.MakeSlice(rv.Type(), n, n))
		return reflectArray{rv: rv}, nil
	case rv.Kind() == reflect.Interface && rv.NumMethod() == 0:
		arr := reflect.ValueOf(make([]any, n))
		rv.Set(arr)
		return reflectArray{rv: arr}, nil
	}
	return nil, mismatch(TypeArray, rv)
}

type reflectArray struct {
	rv reflect.Value
}

func (a reflectArray) Elem(i int) (Visitor, error) {
	return reflectVisitor{rv: a.rv.Index(i)}, nil
}

func (a reflectArray) End() error {
	return nil
}

// unmarshalArray collects an array as a Value and hands it to an Unmarshaler at the end
type unmarshalArray struct {
	ArrayVisitor
	u Unmarshaler
	v *Value
}

func (a *unmarshalArray) End() error {
	if err := a.ArrayVisitor.End(); err != nil {
		return err
	}
	return a.u.UnmarshalRESP(*a.v)
}
