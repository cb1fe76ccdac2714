package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Workbook builds an xlsx file whose first sheet holds rows, starting at A1.
// nil cells are left empty.
func Workbook(t testing.TB, rows [][]interface{}) []byte {
	t.Helper()
	return WorkbookSheets(t, Sheet{Name: "Sheet1", Rows: rows})
}

// Sheet is one worksheet of a fixture workbook.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WorkbookSheets builds an xlsx file with the given sheets in order.
func WorkbookSheets(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
