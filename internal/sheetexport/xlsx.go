package sheetexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"transquote/internal/pricing"
)

const sheetName = "Pricing"

// WriteXLSX renders the sheet rows and totals into an xlsx workbook on w.
// The layout mirrors the CSV export column for column.
func WriteXLSX(w io.Writer, rows []pricing.Row, totals pricing.Totals) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("sheetexport.WriteXLSX: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("sheetexport.WriteXLSX: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("sheetexport.WriteXLSX: %w", err)
	}

	line := 2
	for i := range rows {
		record := rowToRecord(&rows[i])
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
		}
		cell := fmt.Sprintf("A%d", line)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("sheetexport.WriteXLSX: row %d: %w", i, err)
		}
		line++
	}

	line++ // blank row between data and totals
	for _, t := range totalLines(totals) {
		cells := make([]interface{}, len(columns))
		cells[0] = t.label
		cells[len(columns)-2] = formatMoney(t.value)
		cell := fmt.Sprintf("A%d", line)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("sheetexport.WriteXLSX: totals: %w", err)
		}
		line++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("sheetexport.WriteXLSX: %w", err)
	}
	return nil
}
