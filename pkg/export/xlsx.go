package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by [WriteXLSX].
const SheetName = "Dependency Analysis"

var xlsxColumns = []struct {
	title string
	width float64
}{
	{"Package", 25},
	{"Category", 20},
	{"Architecture", 15},
	{"Homepage", 50},
	{"Dependency Chain", 80},
}

// WriteXLSX writes rows as a spreadsheet with a styled, frozen header row.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	body, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	for i, col := range xlsxColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, name+"1", col.title); err != nil {
			return err
		}
	}
	last, err := cellName(len(xlsxColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, header); err != nil {
		return err
	}

	for r, row := range rows {
		values := []any{row.Package, row.Category, row.Arch, row.Homepage, row.DependencyChain}
		start, err := cellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		end, err := cellName(len(xlsxColumns), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A2", end, body); err != nil {
			return err
		}
		if err := f.AutoFilter(SheetName, "A1:"+end, nil); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// cellName converts 1-based coordinates to an A1 reference. Reports longer
// than a worksheet allows fail here.
func cellName(col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("sheet cell %d,%d: %w", col, row, err)
	}
	return name, nil
}
