package extraction

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const unknownItem = "Unknown Item"

// ScanState tracks where the line scan is relative to the summary block
type ScanState int

const (
	// Scanning means no summary line has been seen; priced lines are products.
	Scanning ScanState = iota
	// SummaryReached is terminal: no later line is parsed as a product.
	SummaryReached
)

func (s ScanState) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case SummaryReached:
		return "summary_reached"
	default:
		return "unknown"
	}
}

// Next returns the state after a line has been classified.
func (s ScanState) Next(summaryLine bool) ScanState {
	if summaryLine {
		return SummaryReached
	}
	return s
}

// lineScanner walks the receipt once, collecting products before the summary
// block and summary fields from every summary line.
type lineScanner struct {
	logger *slog.Logger

	state            ScanState
	inProductSection bool

	products []LineItem
	summary  FinancialSummary
}

func (ls *lineScanner) scan(lines []string) {
	for i, line := range lines {
		if isSectionHeader(line) {
			ls.inProductSection = true
			ls.logger.Debug("found product section", "line", i)
		}

		if isSummaryLine(line) {
			ls.state = ls.state.Next(true)
			ls.inProductSection = false
			parseSummaryLine(line, &ls.summary, ls.logger)
			continue
		}

		if ls.state == SummaryReached || !rePrice.MatchString(line) {
			continue
		}

		item, ok := parseProductLine(line)
		if ok && strings.TrimSpace(item.ProductName) != "" {
			ls.products = append(ls.products, item)
			ls.logger.Debug("added product",
				"line", i,
				"name", item.ProductName,
				"quantity", item.Quantity.String(),
				"total", item.Total.String(),
			)
		}
	}
}

// parseSummaryLine assigns the line's first amount to one summary field.
// Rules are checked in order and the first match wins; a repeated field is overwritten.
func parseSummaryLine(line string, summary *FinancialSummary, logger *slog.Logger) {
	match := rePrice.FindString(line)
	if match == "" {
		return
	}
	amount, ok := parseAmount(match)
	if !ok {
		return
	}

	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "=total") ||
		(strings.Contains(lower, "total") && !strings.Contains(lower, "subtotal")):
		summary.Total = amount
		logger.Debug("set total", "amount", amount.String())
	case strings.Contains(lower, "subtotal"):
		summary.Subtotal = amount
		logger.Debug("set subtotal", "amount", amount.String())
	case strings.Contains(lower, "tax"):
		summary.VAT = amount
		logger.Debug("set tax", "amount", amount.String())
	case strings.Contains(lower, "delivery") || strings.Contains(lower, "service"):
		summary.DeliveryCharge = amount
		logger.Debug("set delivery charge", "amount", amount.String())
	case strings.Contains(lower, "discount"):
		summary.Discount = amount
		logger.Debug("set discount", "amount", amount.String())
	}
}

// parseProductLine parses either the "qty | name | price" layout or a free-form
// line holding a single price. It reports false when the line has no price.
func parseProductLine(line string) (LineItem, bool) {
	if m := rePipeItem.FindStringSubmatch(line); m != nil {
		quantity, okQ := parseAmount(m[1])
		price, okP := parseAmount(m[3])
		if okQ && okP {
			return LineItem{
				ProductName: nameOrUnknown(m[2]),
				Quantity:    quantity,
				UnitPrice:   price,
				Total:       price.Mul(quantity),
			}, true
		}
	}

	match := rePrice.FindString(line)
	if match == "" {
		return LineItem{}, false
	}
	price, ok := parseAmount(match)
	if !ok {
		return LineItem{}, false
	}

	quantity := decimal.NewFromInt(1)
	if m := reQuantity.FindStringSubmatch(line); m != nil {
		if q, ok := parseAmount(m[1]); ok && q.IsPositive() {
			quantity = q
		}
	}

	// with an explicit multiplier the printed price is the line total
	unitPrice := price
	if quantity.GreaterThan(decimal.NewFromInt(1)) {
		unitPrice = price.Div(quantity)
	}

	return LineItem{
		ProductName: nameOrUnknown(strings.Replace(line, match, "", 1)),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       price,
	}, true
}

func nameOrUnknown(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return unknownItem
	}
	return name
}
