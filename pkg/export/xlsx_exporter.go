package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Timetable"

// XLSXExporter renders timetable rows into a spreadsheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes a title row, a styled header row, then one row per exam.
func (e *XLSXExporter) Render(rows []TimetableRow, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	lastCol := colName(len(tableHeaders) - 1)
	_ = f.SetCellValue(xlsxSheet, "A1", title)
	_ = f.MergeCell(xlsxSheet, "A1", lastCol+"1")

	for i, header := range tableHeaders {
		_ = f.SetCellValue(xlsxSheet, colName(i)+"2", header)
	}
	_ = f.SetCellStyle(xlsxSheet, "A2", lastCol+"2", headerStyle)
	_ = f.SetColWidth(xlsxSheet, "A", "C", 12)
	_ = f.SetColWidth(xlsxSheet, "D", lastCol, 24)

	for r, row := range rows {
		line := itoa(r + 3)
		for i, value := range row.cells() {
			_ = f.SetCellValue(xlsxSheet, colName(i)+line, value)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}
