// Package export flattens receipt records into tabular CSV and XLSX files.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-parser/internal/extraction"
)

const (
	notAvailable = "N/A"
	summaryLabel = "SUMMARY"
)

// Headers are the column titles, in column order
var Headers = []string{
	"Receipt ID",
	"Receipt Name",
	"Product Name",
	"Quantity",
	"Unit Price",
	"Total",
	"VAT",
	"Delivery Charge",
	"Discount",
	"Subtotal",
	"Grand Total",
}

// Row is one flattened line of the export
type Row struct {
	ReceiptID      string
	ReceiptName    string
	ProductName    string
	Quantity       string
	UnitPrice      string
	Total          string
	VAT            string
	DeliveryCharge string
	Discount       string
	Subtotal       string
	GrandTotal     string
}

// Values returns the row's cells in Headers order
func (r Row) Values() []string {
	return []string{
		r.ReceiptID,
		r.ReceiptName,
		r.ProductName,
		r.Quantity,
		r.UnitPrice,
		r.Total,
		r.VAT,
		r.DeliveryCharge,
		r.Discount,
		r.Subtotal,
		r.GrandTotal,
	}
}

// Rows flattens a record into one row per product plus a trailing SUMMARY row.
// VAT, delivery and discount are split evenly across the product rows; the
// SUMMARY row carries them unallocated.
func Rows(rec *extraction.ReceiptRecord) []Row {
	id := orNA(rec.ReceiptID)
	name := orNA(rec.ReceiptName)
	s := rec.Summary

	rows := make([]Row, 0, len(rec.Products)+1)
	if n := len(rec.Products); n > 0 {
		count := decimal.NewFromInt(int64(n))
		vat := s.VAT.Div(count).StringFixed(2)
		delivery := s.DeliveryCharge.Div(count).StringFixed(2)
		discount := s.Discount.Div(count).StringFixed(2)

		for _, p := range rec.Products {
			quantity := p.Quantity
			if quantity.IsZero() {
				quantity = decimal.NewFromInt(1)
			}
			rows = append(rows, Row{
				ReceiptID:      id,
				ReceiptName:    name,
				ProductName:    orNA(p.ProductName),
				Quantity:       quantity.String(),
				UnitPrice:      p.UnitPrice.String(),
				Total:          p.Total.String(),
				VAT:            vat,
				DeliveryCharge: delivery,
				Discount:       discount,
				Subtotal:       s.Subtotal.String(),
				GrandTotal:     s.Total.String(),
			})
		}
	}

	rows = append(rows, Row{
		ReceiptID:      id,
		ReceiptName:    name,
		ProductName:    summaryLabel,
		Quantity:       "",
		UnitPrice:      "0",
		Total:          "0",
		VAT:            s.VAT.String(),
		DeliveryCharge: s.DeliveryCharge.String(),
		Discount:       s.Discount.String(),
		Subtotal:       s.Subtotal.String(),
		GrandTotal:     s.Total.String(),
	})
	return rows
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
