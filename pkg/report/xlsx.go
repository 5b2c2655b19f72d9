package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	CPLSheet = "CPL"
	BOMSheet = "BOM"
)

// WriteXLSX writes placements and BOM as two sheets of one workbook.
// Numbers are stored as numbers, not text.
func WriteXLSX(w io.Writer, placements []Placement, entries []BOMEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CPLSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", CPLSheet, err)
	}
	if _, err := f.NewSheet(BOMSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", BOMSheet, err)
	}

	if err := setRow(f, CPLSheet, 1, toCells(cplHeader)); err != nil {
		return err
	}
	for i, p := range placements {
		row := []interface{}{p.Designator, p.Comment, p.Footprint, p.X, p.Y, p.Rotation, p.Layer}
		if err := setRow(f, CPLSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, BOMSheet, 1, toCells(bomHeader)); err != nil {
		return err
	}
	for i, e := range entries {
		row := []interface{}{e.Comment, strings.Join(e.Designators, ","), e.Footprint, e.Quantity()}
		if err := setRow(f, BOMSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}
