package extraction

import "github.com/shopspring/decimal"

// ReceiptRecord is the structured result of one extraction call
type ReceiptRecord struct {
	Products     []LineItem       `json:"products"`
	Summary      FinancialSummary `json:"summary"`
	MerchantInfo MerchantInfo     `json:"merchantInfo"`
	ReceiptDate  string           `json:"receiptDate"`
	ReceiptID    string           `json:"receiptId"`
	ReceiptName  string           `json:"receiptName"`
}

// LineItem is a single purchased product
type LineItem struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// FinancialSummary holds the receipt totals exactly as printed.
// No relationship between the fields is enforced.
type FinancialSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	VAT            decimal.Decimal `json:"vat"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
}

// MerchantInfo identifies the seller. Unmatched fields are empty.
type MerchantInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
