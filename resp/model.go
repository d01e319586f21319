package resp

// Type is the one-byte tag that introduces every RESP token
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBoolean      Type = '#'
	TypeNull         Type = '_'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// String implements fmt.Stringer
func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "simple string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeNull:
		return "null"
	case TypeBulkString:
		return "bulk string"
	case TypeArray:
		return "array"
	}
	return "invalid type " + string(rune(t))
}

// Value is a tagged union over the RESP kinds. It is a convenience for
// callers that do not have a Go type of their own to decode into
type Value struct {
	String  []byte  // SimpleString, Error, BulkString
	Array   []Value // Array
	Integer int64   // Integer
	Type    Type
	IsNull  bool // For nil BulkString and nil Array
	Bool    bool // Boolean
}

// ErrorReply is an error line decoded into an interface value.
// Decoding an error line succeeds; treating it as a failure is up to the caller
type ErrorReply string

func (e ErrorReply) Error() string {
	return string(e)
}

// MarshalRESP implements Marshaler
func (v Value) MarshalRESP(s Serializer) error {
	switch v.Type {
	case TypeSimpleString:
		return s.String(string(v.String))
	case TypeError:
		return s.ErrorLine(string(v.String))
	case TypeInteger:
		return s.Int(v.Integer)
	case TypeBoolean:
		return s.Bool(v.Bool)
	case TypeNull:
		return s.None()
	case TypeBulkString:
		if v.IsNull {
			return s.Bytes(nil)
		}
		if v.String == nil {
			return s.Bytes([]byte{})
		}
		return s.Bytes(v.String)
	case TypeArray:
		if v.IsNull {
			return s.NullArray()
		}
		seq, err := s.Seq(len(v.Array))
		if err != nil {
			return err
		}
		for _, el := range v.Array {
			if err := seq.Element(el); err != nil {
				return err
			}
		}
		return seq.End()
	}
	return Errorf("cannot encode value of %s", v.Type)
}

// UnmarshalRESP implements Unmarshaler
func (v *Value) UnmarshalRESP(src Value) error {
	*v = src
	return nil
}
