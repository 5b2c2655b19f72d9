package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var (
	cplHeader = []string{"Designator", "Comment", "Footprint", "Mid X", "Mid Y", "Rotation", "Layer"}
	bomHeader = []string{"Comment", "Designator", "Footprint", "Quantity"}
)

func (p Placement) record() []string {
	return []string{
		p.Designator,
		p.Comment,
		p.Footprint,
		formatFloat(p.X),
		formatFloat(p.Y),
		formatFloat(p.Rotation),
		p.Layer,
	}
}

func (e BOMEntry) record() []string {
	return []string{
		e.Comment,
		strings.Join(e.Designators, ","),
		e.Footprint,
		strconv.Itoa(e.Quantity()),
	}
}

// WriteCPL writes placements as CSV with a header row.
func WriteCPL(w io.Writer, placements []Placement) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(cplHeader); err != nil {
		return err
	}
	for _, p := range placements {
		if err := writer.Write(p.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBOM writes the bill of materials as CSV with a header row.
func WriteBOM(w io.Writer, entries []BOMEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(bomHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write(e.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
