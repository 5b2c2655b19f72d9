package report

import (
	"bytes"
	"fmt"
	"os"
)

type output struct {
	path   string
	render func(*bytes.Buffer) error
}

// WriteFiles writes the reports next to the project files. base is the
// path without extension, e.g. out/mypad/mypad. It returns the paths
// written, none for FormatNone.
func WriteFiles(base string, format Format, placements []Placement, entries []BOMEntry) ([]string, error) {
	var outputs []output
	switch format {
	case FormatNone:
		return nil, nil
	case FormatCSV:
		outputs = []output{
			{base + "-cpl.csv", func(b *bytes.Buffer) error { return WriteCPL(b, placements) }},
			{base + "-bom.csv", func(b *bytes.Buffer) error { return WriteBOM(b, entries) }},
		}
	case FormatXLSX:
		outputs = []output{
			{base + "-assembly.xlsx", func(b *bytes.Buffer) error { return WriteXLSX(b, placements, entries) }},
		}
	default:
		return nil, fmt.Errorf("report: unknown format %v", format)
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		var buf bytes.Buffer
		if err := o.render(&buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", o.path, err)
		}
		if err := os.WriteFile(o.path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", o.path, err)
		}
		paths = append(paths, o.path)
	}
	return paths, nil
}
