package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writeOutput encodes value as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, value interface{}, text func(io.Writer) error) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
