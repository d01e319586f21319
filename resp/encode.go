package resp

import (
	"strconv"
	"strings"
)

// Marshaler is implemented by types that describe their own RESP shape.
// MarshalRESP must call exactly one method of s
type Marshaler interface {
	MarshalRESP(s Serializer) error
}

// Serializer receives the shape of a single value. Each value announces
// itself through exactly one call; sequences announce their length first
// and then hand every element to the returned SeqSerializer
type Serializer interface {
	Int(v int64) error
	Uint(v uint64) error
	Bool(v bool) error
	Float(v float64) error
	Rune(v rune) error
	// String emits a simple string. The text must not contain CR or LF
	String(v string) error
	// ErrorLine emits an error line, under the same restriction as String
	ErrorLine(v string) error
	// Bytes emits a bulk string. A nil slice is the nil bulk string
	Bytes(v []byte) error
	None() error
	Some(v any) error
	Unit() error
	UnitVariant(name string) error
	NullArray() error
	// Seq starts an array of n elements. n must be known up front
	Seq(n int) (SeqSerializer, error)
}

// SeqSerializer collects the elements of an array started with Serializer.Seq
type SeqSerializer interface {
	Element(v any) error
	End() error
}

var crlf = []byte("\r\n")

// maxDepth bounds how deeply values may nest through Some and Seq.
// Self-referencing values hit it instead of overflowing the stack
const maxDepth = 1000

// serializer appends the encoding of one value to out
type serializer struct {
	out   []byte
	done  bool // a value has been announced
	open  bool // a sequence is waiting for End
	depth int
}

// Marshal returns the RESP encoding of v
func Marshal(v any) ([]byte, error) {
	s := &serializer{}
	if err := s.encode(v); err != nil {
		return nil, err
	}
	return s.out, nil
}

// encode runs v through the serializer and checks that it produced one complete value
func (s *serializer) encode(v any) error {
	if err := encodeValue(s, v); err != nil {
		return err
	}
	if !s.done {
		return Errorf("value of type %T did not serialize anything", v)
	}
	if s.open {
		return Errorf("value of type %T left a sequence unterminated", v)
	}
	return nil
}

func (s *serializer) begin() error {
	if s.done {
		return Errorf("value serialized more than once")
	}
	s.done = true
	return nil
}

func (s *serializer) writeHeader(prefix byte, n int64) {
	s.out = append(s.out, prefix)
	s.out = strconv.AppendInt(s.out, n, 10)
	s.out = append(s.out, crlf...)
}

// checkLine checks that text fits on a single RESP line
func checkLine(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return Errorf("line %q contains CR or LF, use a bulk string", text)
	}
	return nil
}

func (s *serializer) writeRaw(prefix byte, b string) {
	s.out = append(s.out, prefix)
	s.out = append(s.out, b...)
	s.out = append(s.out, crlf...)
}

func (s *serializer) Int(v int64) error {
	if err := s.begin(); err != nil {
		return err
	}
	s.writeHeader(byte(TypeInteger), v)
	return nil
}

func (s *serializer) Uint(v uint64) error {
	if err := s.begin(); err != nil {
		return err
	}
	s.out = append(s.out, byte(TypeInteger))
	s.out = strconv.AppendUint(s.out, v, 10)
	s.out = append(s.out, crlf...)
	return nil
}

func (s *serializer) Bool(v bool) error {
	if err := s.begin(); err != nil {
		return err
	}
	if v {
		s.writeRaw(byte(TypeBoolean), "t")
	} else {
		s.writeRaw(byte(TypeBoolean), "f")
	}
	return nil
}

func (s *serializer) Float(float64) error {
	return unsupported("float")
}

func (s *serializer) Rune(rune) error {
	return unsupported("char")
}

func (s *serializer) String(v string) error {
	if err := checkLine(v); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	s.writeRaw(byte(TypeSimpleString), v)
	return nil
}

func (s *serializer) ErrorLine(v string) error {
	if err := checkLine(v); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	s.writeRaw(byte(TypeError), v)
	return nil
}

func (s *serializer) Bytes(v []byte) error {
	if err := s.begin(); err != nil {
		return err
	}
	if v == nil {
		s.out = append(s.out, "$-1\r\n"...)
		return nil
	}
	s.writeHeader(byte(TypeBulkString), int64(len(v)))
	s.out = append(s.out, v...)
	s.out = append(s.out, crlf...)
	return nil
}

func (s *serializer) None() error {
	if err := s.begin(); err != nil {
		return err
	}
	s.out = append(s.out, "_\r\n"...)
	return nil
}

func (s *serializer) Some(v any) error {
	if s.depth >= maxDepth {
		return tooDeep()
	}
	s.depth++
	defer func() { s.depth-- }()
	return encodeValue(s, v)
}

func tooDeep() error {
	return Errorf("value nests deeper than %d levels, it may contain itself", maxDepth)
}

func (s *serializer) Unit() error {
	return s.None()
}

func (s *serializer) UnitVariant(name string) error {
	return s.String(name)
}

func (s *serializer) NullArray() error {
	if err := s.begin(); err != nil {
		return err
	}
	s.out = append(s.out, "*-1\r\n"...)
	return nil
}

func (s *serializer) Seq(n int) (SeqSerializer, error) {
	if n < 0 {
		return nil, unsupported("sequences of unknown length")
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.open = true
	return &seqSerializer{parent: s, n: n}, nil
}

// seqSerializer buffers element encodings until the count header can be written
type seqSerializer struct {
	parent   *serializer
	elements []byte
	n        int
	count    int
	ended    bool
}

func (q *seqSerializer) Element(v any) error {
	if q.ended {
		return Errorf("element added to an ended sequence")
	}
	if q.parent.depth >= maxDepth {
		return tooDeep()
	}
	sub := serializer{depth: q.parent.depth + 1}
	if err := sub.encode(v); err != nil {
		return err
	}
	q.elements = append(q.elements, sub.out...)
	q.count++
	return nil
}

func (q *seqSerializer) End() error {
	if q.ended {
		return Errorf("sequence ended twice")
	}
	if q.count != q.n {
		return Errorf("sequence declared %d elements but %d were serialized", q.n, q.count)
	}
	q.ended = true
	q.parent.writeHeader(byte(TypeArray), int64(q.count))
	q.parent.out = append(q.parent.out, q.elements...)
	q.parent.open = false
	return nil
}
