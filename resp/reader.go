package resp

// Decoder reads successive values from one complete in-memory buffer.
// A failed read leaves the Decoder at the start of the value that failed,
// so Offset reports where the bad or truncated value begins
type Decoder struct {
	p parser
}

// NewDecoder returns a Decoder positioned at the start of data
func NewDecoder(data []byte) *Decoder {
	return &Decoder{p: parser{data: data}}
}

// Reset discards any state and positions the Decoder at the start of data
func (d *Decoder) Reset(data []byte) {
	d.p = parser{data: data}
}

// Visit parses the next value and hands it to vis
func (d *Decoder) Visit(vis Visitor) error {
	start := d.p.pos
	if err := d.p.value(vis); err != nil {
		d.p.pos = start
		return err
	}
	return nil
}

// Read parses the next value into a Value
func (d *Decoder) Read() (Value, error) {
	var v Value
	if err := d.Visit(valueBuilder{dst: &v}); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Decode parses the next value into the value pointed to by v
func (d *Decoder) Decode(v any) error {
	vis, err := newReflectVisitor(v)
	if err != nil {
		return err
	}
	return d.Visit(vis)
}

// More reports whether unread bytes remain
func (d *Decoder) More() bool {
	return d.p.pos < len(d.p.data)
}

// Offset returns the number of bytes consumed so far
func (d *Decoder) Offset() int {
	return d.p.pos
}

// Buffered returns the number of bytes that have not been read yet
func (d *Decoder) Buffered() int {
	return len(d.p.data) - d.p.pos
}
