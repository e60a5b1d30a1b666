package output

import (
	"io"
	"strconv"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// RawFormatter prints reply text without quoting or type markers, one
// line per array element. Null values print as empty lines.
type RawFormatter struct{}

// Format writes v.
func (f *RawFormatter) Format(w io.Writer, v resp.Value) error {
	return writeRaw(w, v)
}

func writeRaw(w io.Writer, v resp.Value) error {
	var line string
	switch v.Kind {
	case resp.KindArray:
		for _, e := range v.Array {
			if err := writeRaw(w, e); err != nil {
				return err
			}
		}
		return nil
	case resp.KindInteger:
		line = strconv.FormatInt(v.Int, 10)
	default:
		line = v.Str
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}
