package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zombor/receipt-parser/internal/extraction"
)

// WriteCSV writes the header and the flattened rows of rec to w
func WriteCSV(w io.Writer, rec *extraction.ReceiptRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range Rows(rec) {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// CSV renders rec as CSV bytes
func CSV(rec *extraction.ReceiptRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
