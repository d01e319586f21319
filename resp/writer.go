package resp

import (
	"bufio"
	"io"
)

// Encoder writes RESP encodings of successive values to an output stream
type Encoder struct {
	writer *bufio.Writer
}

// NewEncoder initializes an Encoder with a buffered writer
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		writer: bufio.NewWriter(w),
	}
}

// Encode serializes v and writes it to the buffer. Nothing is written if v fails to serialize
func (e *Encoder) Encode(v any) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.writer.Write(b)
	return err
}

// Write serializes a RESP Value and writes it to the buffer
func (e *Encoder) Write(v Value) error {
	return e.Encode(v)
}

// Flush sends all buffered data to the underlying writer
func (e *Encoder) Flush() error {
	return e.writer.Flush()
}

// Buffered returns the number of bytes waiting for Flush
func (e *Encoder) Buffered() int {
	return e.writer.Buffered()
}
