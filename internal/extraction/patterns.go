package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// price-shaped substring: optional $, digits with optional thousands separators, two decimals
	rePrice = regexp.MustCompile(`\$?\d[\d,]*\.\d{2}`)

	// "2 | Cola | $3.00"
	rePipeItem = regexp.MustCompile(`(\d+)\s*\|\s*([^|]+?)\s*\|\s*\$?\s*(\d[\d,]*\.\d{2})`)

	// leading "2x" / "1.5×" multiplier
	reQuantity = regexp.MustCompile(`^(\d+(?:\.\d+)?)[x×]`)

	// merchant name candidates are skipped when they look like an amount or a date
	reNameSkipAmount = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	reNameSkipDate   = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)

	reDigit = regexp.MustCompile(`\d`)

	reExtension = regexp.MustCompile(`\.[^/.]+$`)
)

// datePatterns are tried in order on every line. Digit-only guards let a date
// touch letters ("DATE03/14/2024") without matching inside a longer number.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\D)(\d{1,2}/\d{1,2}/\d{2,4})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{1,2}-\d{1,2}-\d{2,4})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{4}-\d{1,2}-\d{1,2})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{1,2}\s+\w+\s+\d{4})(?:\D|$)`),
}

var summaryKeywords = []string{
	"total", "subtotal", "tax", "vat", "gst", "service", "delivery",
	"discount", "tip", "amount", "balance", "change", "due",
}

// sectionHeaderTokens mark the start of the item table.
var sectionHeaderTokens = []string{"QTY", "ITEM", "PRICE", "|", "PIZZA", "1 |"}

var amountCleaner = strings.NewReplacer("$", "", ",", "")

// parseAmount converts a price-shaped match to a decimal.
func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(amountCleaner.Replace(s)))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func isSummaryLine(line string) bool {
	return containsAny(strings.ToLower(line), summaryKeywords)
}

func isSectionHeader(line string) bool {
	return containsAny(line, sectionHeaderTokens)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// receiptName strips the file extension from a source filename
func receiptName(filename string) string {
	return reExtension.ReplaceAllString(filename, "")
}
