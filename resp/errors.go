package resp

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a codec failure
type Kind uint8

const (
	// KindMessage is a free-form error, used for unsupported shapes and custom errors
	KindMessage Kind = iota
	// KindEOF means the input ended where more bytes were required
	KindEOF
	// KindSyntax means the input does not follow the RESP grammar
	KindSyntax
	// KindExpectedCRLF means a line terminator is missing or malformed
	KindExpectedCRLF
	// KindExpectedArray means an array header does not carry a valid count
	KindExpectedArray
	// KindExpectedInteger means an integer payload is not a valid decimal
	KindExpectedInteger
	// KindExpectedSimpleString means a simple string line is not terminated
	KindExpectedSimpleString
)

var kindText = [...]string{
	KindMessage:              "message",
	KindEOF:                  "unexpected end of input",
	KindSyntax:               "syntax does not follow RESP",
	KindExpectedCRLF:         "expected CRLF line terminator",
	KindExpectedArray:        "invalid content expected an array",
	KindExpectedInteger:      "invalid content expected an integer",
	KindExpectedSimpleString: "invalid content expected a simple string",
}

func (k Kind) String() string {
	if int(k) < len(kindText) {
		return kindText[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is returned by every encode and decode operation of this package.
// Offset is the position of the failing token in the input, or -1 when
// the error is not tied to a position (encoding errors, sentinels)
type Error struct {
	Kind   Kind
	Msg    string
	Offset int
}

// Sentinels for use with errors.Is. They match any *Error of the same Kind
var (
	ErrEOF                  = &Error{Kind: KindEOF, Offset: -1}
	ErrSyntax               = &Error{Kind: KindSyntax, Offset: -1}
	ErrExpectedCRLF         = &Error{Kind: KindExpectedCRLF, Offset: -1}
	ErrExpectedArray        = &Error{Kind: KindExpectedArray, Offset: -1}
	ErrExpectedInteger      = &Error{Kind: KindExpectedInteger, Offset: -1}
	ErrExpectedSimpleString = &Error{Kind: KindExpectedSimpleString, Offset: -1}
	ErrMessage              = &Error{Kind: KindMessage, Offset: -1}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Offset < 0 {
		return "resp: " + msg
	}
	return "resp: " + msg + " at offset " + strconv.Itoa(e.Offset)
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds a KindMessage error. Marshaler and Unmarshaler
// implementations use it to report their own failures
func Errorf(format string, args ...any) error {
	return &Error{Kind: KindMessage, Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// KindOf returns the Kind of err, or KindMessage if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindMessage
}

func syntaxError(kind Kind, offset int) error {
	return &Error{Kind: kind, Offset: offset}
}

func unsupported(shape string) error {
	return &Error{Kind: KindMessage, Msg: "RESP does not support " + shape, Offset: -1}
}
