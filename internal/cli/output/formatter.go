package output

import (
	"fmt"
	"io"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter writes one reply.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{}, nil
	case FormatRaw:
		return &RawFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, raw, json or yaml)", format)
	}
}

// toData converts a reply into plain Go values for structured encoders.
// Errors become {"error": text}; null values become nil.
func toData(v resp.Value) any {
	switch v.Kind {
	case resp.KindSimpleString:
		return v.Str
	case resp.KindError:
		return map[string]string{"error": v.Str}
	case resp.KindInteger:
		return v.Int
	case resp.KindBulkString:
		if v.Null {
			return nil
		}
		return v.Str
	case resp.KindArray:
		if v.Null {
			return nil
		}
		items := make([]any, len(v.Array))
		for i, e := range v.Array {
			items[i] = toData(e)
		}
		return items
	default:
		return nil
	}
}
