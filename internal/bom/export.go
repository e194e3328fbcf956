package bom

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var xlsxHeader = []interface{}{
	"category",
	"material_id",
	"code",
	"description",
	"unit",
	"quantity",
	"done",
}

// WriteXLSX пишет спецификацию проекта в один лист: группы configured, auto, manual.
// done: множество id материалов, отмеченных монтёром.
func WriteXLSX(w io.Writer, projectID string, s Split, done map[string]bool) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "BOM"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Stückliste " + projectID}); err != nil {
		return fmt.Errorf("doc props: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	row := 2
	for _, g := range s.Groups() {
		for _, m := range g.Rows {
			mark := ""
			if done[m.MaterialID] {
				mark = "x"
			}
			values := []interface{}{
				string(g.Category),
				m.MaterialID,
				m.Code,
				m.Description,
				m.Unit,
				m.Quantity,
				mark,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("row %d: %w", row, err)
			}
			row++
		}
	}

	return f.Write(w)
}
