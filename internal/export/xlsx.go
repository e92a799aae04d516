package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/receipt-parser/internal/extraction"
)

const sheetName = "Receipt"

// first column holding an amount (Quantity)
const firstNumericColumn = 3

// XLSX renders rec as a workbook with a single Receipt sheet
func XLSX(rec *extraction.ReceiptRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// rename the default sheet instead of leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, row := range Rows(rec) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := cellValues(row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38) // uuid
	_ = f.SetColWidth(sheetName, "B", "C", 28)
	_ = f.SetColWidth(sheetName, "D", "K", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValues keeps text columns as strings and writes amounts as numbers
func cellValues(row Row) []any {
	raw := row.Values()
	out := make([]any, len(raw))
	for i, v := range raw {
		out[i] = v
		if i < firstNumericColumn || v == "" {
			continue
		}
		if d, err := decimal.NewFromString(v); err == nil {
			out[i] = d.InexactFloat64()
		}
	}
	return out
}
