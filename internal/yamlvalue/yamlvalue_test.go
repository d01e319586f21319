package yamlvalue

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/respkit/resp"
)

func TestParse(t *testing.T) {
	input := `
- SET
- 42
- true
- ~
- !bulk hello
- !err ERR nope
- !nullbulk
- !nullarray
- !!binary AP8=
- "two\nlines"
- [nested, -1]
- []
---
OK
`
	values, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, values, 2)

	assert.Equal(t, resp.MakeArray([]resp.Value{
		resp.MakeSimpleString("SET"),
		resp.MakeInteger(42),
		resp.MakeBoolean(true),
		resp.MakeNull(),
		resp.MakeBulkString("hello"),
		resp.MakeError("ERR nope"),
		resp.MakeNilBulkString(),
		resp.MakeNilArray(),
		resp.MakeBulkBytes([]byte{0x00, 0xff}),
		resp.MakeBulkString("two\nlines"),
		resp.MakeArray([]resp.Value{resp.MakeSimpleString("nested"), resp.MakeInteger(-1)}),
		resp.MakeArray([]resp.Value{}),
	}), values[0])
	assert.Equal(t, resp.MakeSimpleString("OK"), values[1])
}

func TestParse_Empty(t *testing.T) {
	values, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"float", "1.5", "RESP has no float type"},
		{"map", "a: 1", "RESP has no map type"},
		{"nested float", "[1, 2.5]", "RESP has no float type"},
		{"unknown tag", "!weird x", "unsupported tag !weird"},
		{"bad binary", "!!binary '***'", "invalid binary"},
		{"bad yaml", "[unclosed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	values := []resp.Value{
		resp.MakeSimpleString("123"),
		resp.MakeSimpleString("true"),
		resp.MakeError("ERR x"),
		resp.MakeInteger(-7),
		resp.MakeBoolean(false),
		resp.MakeNull(),
		resp.MakeBulkString(""),
		resp.MakeBulkString("a\r\nb"),
		resp.MakeBulkBytes([]byte{0xff, 0xfe}),
		resp.MakeNilBulkString(),
		resp.MakeNilArray(),
		resp.MakeArray([]resp.Value{resp.MakeInteger(1), resp.MakeArray([]resp.Value{})}),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, values))

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}
