package extraction

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// minFallbackPrice filters out page numbers and similar noise
var minFallbackPrice = decimal.RequireFromString("0.50")

// parseSinglePriceLines is used only when the primary scan found no products.
// Every line carrying exactly one price is a product, summary cutoff ignored.
func parseSinglePriceLines(lines []string, logger *slog.Logger) []LineItem {
	var products []LineItem
	for i, line := range lines {
		matches := rePrice.FindAllString(line, -1)
		if len(matches) != 1 {
			continue
		}
		if isSummaryLine(line) {
			continue
		}
		price, ok := parseAmount(matches[0])
		if !ok || price.LessThan(minFallbackPrice) {
			continue
		}
		name := strings.TrimSpace(strings.Replace(line, matches[0], "", 1))
		if name == "" {
			continue
		}
		products = append(products, LineItem{
			ProductName: name,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   price,
			Total:       price,
		})
		logger.Debug("added fallback product", "line", i, "name", name, "price", price.String())
	}
	return products
}
