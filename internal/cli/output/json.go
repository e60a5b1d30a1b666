package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// JSONFormatter formats replies as JSON.
type JSONFormatter struct{}

// Format formats v as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, v resp.Value) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toData(v))
}
