package resp

import (
	"bytes"
	"errors"
	"strconv"
)

// Visitor builds a decoded value. The decoder calls exactly one method per
// token it reads. Byte slices alias the input buffer and must be copied if
// they are retained
type Visitor interface {
	VisitSimpleString(s []byte) error
	VisitError(s []byte) error
	VisitInt(n int64) error
	// VisitUint receives positive integers that do not fit in an int64
	VisitUint(n uint64) error
	VisitBool(b bool) error
	VisitNull() error
	// VisitBulkString receives nil for the nil bulk string
	VisitBulkString(b []byte) error
	// VisitArray announces an array of n elements, or the nil array when n is -1.
	// The returned ArrayVisitor is ignored for the nil array
	VisitArray(n int) (ArrayVisitor, error)
}

// ArrayVisitor receives the elements of an array in order
type ArrayVisitor interface {
	Elem(i int) (Visitor, error)
	End() error
}

// parser consumes one complete buffer left to right
type parser struct {
	data []byte
	pos  int
}

// value parses the token at p.pos and hands it to v
func (p *parser) value(v Visitor) error {
	start := p.pos
	if p.pos >= len(p.data) {
		return syntaxError(KindEOF, start)
	}
	tag := Type(p.data[p.pos])
	p.pos++

	switch tag {
	case TypeSimpleString, TypeError:
		line, err := p.line(start, KindExpectedSimpleString)
		if err != nil {
			return err
		}
		if tag == TypeError {
			return v.VisitError(line)
		}
		return v.VisitSimpleString(line)

	case TypeInteger:
		line, err := p.line(start, KindExpectedCRLF)
		if err != nil {
			return err
		}
		return p.integer(v, line, start)

	case TypeBoolean:
		if p.pos >= len(p.data) {
			return syntaxError(KindEOF, start)
		}
		b := p.data[p.pos]
		if b != 't' && b != 'f' {
			return syntaxError(KindSyntax, start)
		}
		p.pos++
		if err := p.crlf(start); err != nil {
			return err
		}
		return v.VisitBool(b == 't')

	case TypeNull:
		if err := p.crlf(start); err != nil {
			return err
		}
		return v.VisitNull()

	case TypeBulkString:
		n, err := p.length(start, KindExpectedInteger)
		if err != nil {
			return err
		}
		if n < 0 {
			return v.VisitBulkString(nil)
		}
		if len(p.data)-p.pos < n {
			return syntaxError(KindEOF, start)
		}
		body := p.data[p.pos : p.pos+n : p.pos+n]
		p.pos += n
		if err := p.crlf(start); err != nil {
			return err
		}
		return v.VisitBulkString(body)

	case TypeArray:
		n, err := p.length(start, KindExpectedArray)
		if err != nil {
			return err
		}
		// the smallest element is three bytes long, so a count above
		// remaining/3 cannot be satisfied. Walk the elements without
		// handing the count to v so the error names the element that fails
		if n > (len(p.data)-p.pos)/3 {
			return p.skipElements(n, start)
		}
		av, err := v.VisitArray(n)
		if err != nil || n < 0 {
			return err
		}
		if av == nil {
			return Errorf("visitor accepted an array of %d elements without an element visitor", n)
		}
		for i := 0; i < n; i++ {
			ev, err := av.Elem(i)
			if err != nil {
				return err
			}
			if err := p.value(ev); err != nil {
				return err
			}
		}
		return av.End()
	}

	return syntaxError(KindSyntax, start)
}

// skipElements parses up to n elements into a discarding visitor. It is only
// used for counts the remaining input cannot hold and always returns an error
func (p *parser) skipElements(n, start int) error {
	for i := 0; i < n; i++ {
		if err := p.value(discard{}); err != nil {
			return err
		}
	}
	return syntaxError(KindEOF, start)
}

// discard accepts any token and keeps nothing
type discard struct{}

func (discard) VisitSimpleString([]byte) error { return nil }
func (discard) VisitError([]byte) error        { return nil }
func (discard) VisitInt(int64) error           { return nil }
func (discard) VisitUint(uint64) error         { return nil }
func (discard) VisitBool(bool) error           { return nil }
func (discard) VisitNull() error               { return nil }
func (discard) VisitBulkString([]byte) error   { return nil }

func (d discard) VisitArray(int) (ArrayVisitor, error) { return d, nil }
func (d discard) Elem(int) (Visitor, error)            { return d, nil }
func (discard) End() error                             { return nil }

// line returns the bytes up to the next CRLF and moves past it.
// A line without any line feed fails with the missing kind
func (p *parser) line(start int, missing Kind) ([]byte, error) {
	rest := p.data[p.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		return nil, syntaxError(missing, start)
	}
	if i == 0 || rest[i-1] != '\r' {
		return nil, syntaxError(KindExpectedCRLF, start)
	}
	line := rest[: i-1 : i-1]
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, syntaxError(KindExpectedCRLF, start)
	}
	p.pos += i + 1
	return line, nil
}

func (p *parser) crlf(start int) error {
	rest := p.data[p.pos:]
	switch {
	case len(rest) == 0:
		return syntaxError(KindEOF, start)
	case rest[0] != '\r':
		return syntaxError(KindExpectedCRLF, start)
	case len(rest) == 1:
		return syntaxError(KindEOF, start)
	case rest[1] != '\n':
		return syntaxError(KindExpectedCRLF, start)
	}
	p.pos += 2
	return nil
}

// length reads the header line of a bulk string or array. -1 marks the nil form
func (p *parser) length(start int, invalid Kind) (int, error) {
	line, err := p.line(start, KindEOF)
	if err != nil {
		return 0, err
	}
	if string(line) == "-1" {
		return -1, nil
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, syntaxError(invalid, start)
	}
	if n < 0 {
		return 0, syntaxError(KindSyntax, start)
	}
	return n, nil
}

func (p *parser) integer(v Visitor, line []byte, start int) error {
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err == nil {
		return v.VisitInt(n)
	}
	if errors.Is(err, strconv.ErrRange) && line[0] != '-' {
		if u, err := strconv.ParseUint(string(bytes.TrimPrefix(line, []byte("+"))), 10, 64); err == nil {
			return v.VisitUint(u)
		}
	}
	return syntaxError(KindExpectedInteger, start)
}

// Decode parses the first value in data into a Value and reports the number
// of bytes it consumed. Bytes after the value are left alone
func Decode(data []byte) (Value, int, error) {
	var v Value
	n, err := DecodeVisitor(data, valueBuilder{dst: &v})
	if err != nil {
		return Value{}, 0, err
	}
	return v, n, nil
}

// DecodeVisitor parses the first value in data, driving vis
func DecodeVisitor(data []byte, vis Visitor) (int, error) {
	p := parser{data: data}
	if err := p.value(vis); err != nil {
		return 0, err
	}
	return p.pos, nil
}

// Unmarshal parses the first value in data and stores it in the value pointed to by v
func Unmarshal(data []byte, v any) (int, error) {
	vis, err := newReflectVisitor(v)
	if err != nil {
		return 0, err
	}
	return DecodeVisitor(data, vis)
}

// valueBuilder is the Visitor behind Decode
type valueBuilder struct {
	dst *Value
}

func clone(b []byte) []byte {
	return append([]byte{}, b...)
}

func (b valueBuilder) VisitSimpleString(s []byte) error {
	*b.dst = Value{Type: TypeSimpleString, String: clone(s)}
	return nil
}

func (b valueBuilder) VisitError(s []byte) error {
	*b.dst = Value{Type: TypeError, String: clone(s)}
	return nil
}

func (b valueBuilder) VisitInt(n int64) error {
	*b.dst = MakeInteger(n)
	return nil
}

func (b valueBuilder) VisitUint(n uint64) error {
	return Errorf("integer %d overflows int64", n)
}

func (b valueBuilder) VisitBool(v bool) error {
	*b.dst = MakeBoolean(v)
	return nil
}

func (b valueBuilder) VisitNull() error {
	*b.dst = MakeNull()
	return nil
}

func (b valueBuilder) VisitBulkString(s []byte) error {
	if s == nil {
		*b.dst = MakeNilBulkString()
		return nil
	}
	*b.dst = Value{Type: TypeBulkString, String: clone(s)}
	return nil
}

func (b valueBuilder) VisitArray(n int) (ArrayVisitor, error) {
	if n < 0 {
		*b.dst = MakeNilArray()
		return nil, nil
	}
	arr := make([]Value, n)
	*b.dst = Value{Type: TypeArray, Array: arr}
	return arrayBuilder(arr), nil
}

type arrayBuilder []Value

func (a arrayBuilder) Elem(i int) (Visitor, error) {
	return valueBuilder{dst: &a[i]}, nil
}

func (a arrayBuilder) End() error {
	return nil
}
