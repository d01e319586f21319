// Package yamlvalue maps YAML documents onto resp.Value and back.
//
// Plain scalars follow their YAML type: integers, booleans and null map to
// the RESP kinds of the same name and strings become simple strings, or
// bulk strings when they span lines. Explicit tags select the other forms:
//
//	!bulk text      bulk string
//	!!binary b64    bulk string with arbitrary bytes
//	!err text       error line
//	!nullbulk       nil bulk string
//	!nullarray      nil array
//
// Sequences become arrays. Floats and mappings have no RESP form.
package yamlvalue

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/eternalApril/respkit/resp"
)

const (
	tagBulk      = "!bulk"
	tagErr       = "!err"
	tagNullBulk  = "!nullbulk"
	tagNullArray = "!nullarray"

	tagStr    = "!!str"
	tagInt    = "!!int"
	tagBool   = "!!bool"
	tagNull   = "!!null"
	tagFloat  = "!!float"
	tagBinary = "!!binary"
	tagSeq    = "!!seq"
)

// Parse reads every YAML document from r
func Parse(r io.Reader) ([]resp.Value, error) {
	dec := yaml.NewDecoder(r)

	var values []resp.Value
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return values, nil
			}
			return nil, err
		}

		v, err := FromNode(&doc)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

// FromNode converts a YAML node into a resp.Value
func FromNode(n *yaml.Node) (resp.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return resp.MakeNull(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		values := make([]resp.Value, len(n.Content))
		for i, el := range n.Content {
			v, err := FromNode(el)
			if err != nil {
				return resp.Value{}, err
			}
			values[i] = v
		}
		return resp.MakeArray(values), nil
	case yaml.MappingNode:
		return resp.Value{}, fmt.Errorf("line %d: RESP has no map type", n.Line)
	}

	return fromScalar(n)
}

func fromScalar(n *yaml.Node) (resp.Value, error) {
	switch tag := n.ShortTag(); tag {
	case tagStr:
		if strings.ContainsAny(n.Value, "\r\n") {
			return resp.MakeBulkString(n.Value), nil
		}
		return resp.MakeSimpleString(n.Value), nil
	case tagInt:
		var i int64
		if err := n.Decode(&i); err != nil {
			return resp.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return resp.MakeInteger(i), nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return resp.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return resp.MakeBoolean(b), nil
	case tagNull:
		return resp.MakeNull(), nil
	case tagBinary:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return resp.Value{}, fmt.Errorf("line %d: invalid binary: %w", n.Line, err)
		}
		return resp.MakeBulkBytes(b), nil
	case tagBulk:
		return resp.MakeBulkString(n.Value), nil
	case tagErr:
		return resp.MakeError(n.Value), nil
	case tagNullBulk:
		return resp.MakeNilBulkString(), nil
	case tagNullArray:
		return resp.MakeNilArray(), nil
	case tagFloat:
		return resp.Value{}, fmt.Errorf("line %d: RESP has no float type", n.Line)
	default:
		return resp.Value{}, fmt.Errorf("line %d: unsupported tag %s", n.Line, tag)
	}
}

// ToNode converts a resp.Value into a YAML node. Text that is not valid UTF-8
// is written as !!binary and reads back as a bulk string
func ToNode(v resp.Value) *yaml.Node {
	switch v.Type {
	case resp.TypeSimpleString:
		if !utf8.Valid(v.String) {
			return binaryNode(v.String)
		}
		return scalar(tagStr, string(v.String))
	case resp.TypeError:
		return scalar(tagErr, string(v.String))
	case resp.TypeInteger:
		return scalar(tagInt, strconv.FormatInt(v.Integer, 10))
	case resp.TypeBoolean:
		return scalar(tagBool, strconv.FormatBool(v.Bool))
	case resp.TypeNull:
		return scalar(tagNull, "null")
	case resp.TypeBulkString:
		if v.IsNull {
			return scalar(tagNullBulk, "")
		}
		if !utf8.Valid(v.String) {
			return binaryNode(v.String)
		}
		return scalar(tagBulk, string(v.String))
	case resp.TypeArray:
		if v.IsNull {
			return scalar(tagNullArray, "")
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		for _, el := range v.Array {
			seq.Content = append(seq.Content, ToNode(el))
		}
		return seq
	}
	return scalar(tagNull, "null")
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func binaryNode(b []byte) *yaml.Node {
	return scalar(tagBinary, base64.StdEncoding.EncodeToString(b))
}

// Write emits one YAML document per value
func Write(w io.Writer, values []resp.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	for _, v := range values {
		if err := enc.Encode(ToNode(v)); err != nil {
			return err
		}
	}
	return enc.Close()
}
