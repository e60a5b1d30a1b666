package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// TextFormatter prints replies the way redis-cli does on a terminal.
type TextFormatter struct{}

// Format writes v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeText(&b, v, "")
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func writeText(b *strings.Builder, v resp.Value, indent string) {
	switch v.Kind {
	case resp.KindSimpleString:
		b.WriteString(v.Str)
	case resp.KindError:
		b.WriteString("(error) ")
		b.WriteString(v.Str)
	case resp.KindInteger:
		fmt.Fprintf(b, "(integer) %d", v.Int)
	case resp.KindBulkString:
		if v.Null {
			b.WriteString("(nil)")
			return
		}
		b.WriteString(strconv.Quote(v.Str))
	case resp.KindArray:
		if v.Null {
			b.WriteString("(nil)")
			return
		}
		if len(v.Array) == 0 {
			b.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v.Array)))
		for i, e := range v.Array {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(prefix)
			writeText(b, e, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		b.WriteString("(unknown)")
	}
}
