package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be %q or %q", format, FormatText, FormatJSON)
	}
}

// RenderJSON writes v as indented JSON. Severities, directions and change
// types encode as their lowercase names.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
