package export

import (
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX writes a table as a single-sheet workbook.
func WriteXLSX(w io.Writer, sheetName string, t Table) error {
	f, err := buildWorkbook(sheetName, t)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// SaveXLSX writes a table as a single-sheet workbook at path.
func SaveXLSX(path, sheetName string, t Table) error {
	f, err := buildWorkbook(sheetName, t)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}

func buildWorkbook(sheetName string, t Table) (*xlsx.File, error) {
	if sheetName == "" {
		sheetName = "dados"
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, name := range t.Header {
		header.AddCell().SetString(name)
	}

	for _, row := range t.Rows {
		out := sheet.AddRow()
		for i := range t.Header {
			cell := out.AddCell()
			if i >= len(row) {
				continue
			}
			setCell(cell, row[i])
		}
	}
	return f, nil
}

// setCell keeps numbers numeric in the workbook so spreadsheet formulas
// work on exported values.
func setCell(cell *xlsx.Cell, v any) {
	switch x := v.(type) {
	case nil:
		cell.SetString("")
	case string:
		cell.SetString(x)
	case float64:
		if math.IsNaN(x) {
			cell.SetString("")
			return
		}
		cell.SetFloat(x)
	case int:
		cell.SetInt(x)
	case int64:
		cell.SetInt64(x)
	default:
		cell.SetString(formatValue(v))
	}
}
