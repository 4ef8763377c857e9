package export

import (
	"encoding/json"
	"io"
)

// JSONExporter writes transcripts as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(t)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
