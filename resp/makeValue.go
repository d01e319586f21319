package resp

import "fmt"

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value {
	return Value{
		Type:   TypeSimpleString,
		String: []byte(s),
	}
}

// MakeError construct Error Value from string
func MakeError(s string) Value {
	return Value{
		Type:   TypeError,
		String: []byte(s),
	}
}

// MakeErrorf construct Error Value from a format string
func MakeErrorf(format string, args ...any) Value {
	return MakeError(fmt.Sprintf(format, args...))
}

// MakeBulkString construct BulkString Value from string
func MakeBulkString(s string) Value {
	return Value{
		Type:   TypeBulkString,
		String: []byte(s),
	}
}

// MakeBulkBytes construct BulkString Value from raw bytes. A nil slice gives a nil BulkString
func MakeBulkBytes(b []byte) Value {
	if b == nil {
		return MakeNilBulkString()
	}
	return Value{
		Type:   TypeBulkString,
		String: b,
	}
}

// MakeNilBulkString construct nil BulkSting Value
func MakeNilBulkString() Value {
	return Value{
		Type:   TypeBulkString,
		IsNull: true,
	}
}

// MakeInteger construct Integer Value from int64
func MakeInteger(n int64) Value {
	return Value{
		Type:    TypeInteger,
		Integer: n,
	}
}

// MakeBoolean construct Boolean Value
func MakeBoolean(b bool) Value {
	return Value{
		Type: TypeBoolean,
		Bool: b,
	}
}

// MakeNull construct the RESP null Value
func MakeNull() Value {
	return Value{Type: TypeNull}
}

// MakeArray creates a standard RESP array containing the provided elements
func MakeArray(values []Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{
		Type:  TypeArray,
		Array: values,
	}
}

// MakeNilArray creates the nil RESP array
func MakeNilArray() Value {
	return Value{
		Type:   TypeArray,
		IsNull: true,
	}
}

// MakeCommand creates the array of bulk strings a client sends for a command
func MakeCommand(name string, args ...string) Value {
	elements := make([]Value, 1+len(args))
	elements[0] = MakeBulkString(name)
	for i, a := range args {
		elements[i+1] = MakeBulkString(a)
	}
	return MakeArray(elements)
}
