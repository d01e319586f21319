package resp

import (
	"strconv"
	"strings"
)

// Format renders v the way redis-cli prints replies
func (v Value) Format() string {
	var sb strings.Builder
	v.format(&sb, 0)
	return sb.String()
}

func (v Value) format(sb *strings.Builder, indent int) {
	switch v.Type {
	case TypeSimpleString:
		sb.Write(v.String)
	case TypeError:
		sb.WriteString("(error) ")
		sb.Write(v.String)
	case TypeInteger:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(v.Integer, 10))
	case TypeBoolean:
		if v.Bool {
			sb.WriteString("(true)")
		} else {
			sb.WriteString("(false)")
		}
	case TypeNull:
		sb.WriteString("(nil)")
	case TypeBulkString:
		if v.IsNull {
			sb.WriteString("(nil)")
			return
		}
		sb.WriteString(strconv.Quote(string(v.String)))
	case TypeArray:
		if v.IsNull {
			sb.WriteString("(nil array)")
			return
		}
		if len(v.Array) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v.Array)))
		for i, el := range v.Array {
			if i > 0 {
				sb.WriteByte('\n')
				sb.WriteString(strings.Repeat(" ", indent))
			}
			label := strconv.Itoa(i + 1)
			sb.WriteString(strings.Repeat(" ", width-len(label)))
			sb.WriteString(label)
			sb.WriteString(") ")
			el.format(sb, indent+width+2)
		}
	default:
		sb.WriteString("(invalid)")
	}
}
