// Package extraction turns raw OCR text from a retail receipt into a structured
// ReceiptRecord: line items, totals, merchant details and the transaction date.
//
// Extraction is heuristic and best-effort. Unmatched fields stay empty or zero;
// no input makes it fail.
package extraction

import (
	"log/slog"

	"github.com/google/uuid"
)

// IDGenerator generates unique receipt IDs
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Extractor runs the extraction pipeline. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	matchers    Matchers
	idGenerator IDGenerator
	logger      *slog.Logger
}

// New creates an Extractor that assigns random UUIDs to records
func New(matchers Matchers, logger *slog.Logger) *Extractor {
	return NewWithDeps(matchers, logger, uuidGenerator{})
}

// NewWithDeps creates an Extractor with a custom ID generator for testing
func NewWithDeps(matchers Matchers, logger *slog.Logger, idGen IDGenerator) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if idGen == nil {
		idGen = uuidGenerator{}
	}
	return &Extractor{
		matchers:    matchers,
		idGenerator: idGen,
		logger:      logger,
	}
}

// Extract parses OCR text. filename is the source image name and only feeds ReceiptName.
func (e *Extractor) Extract(text, filename string) *ReceiptRecord {
	lines := SplitLines(text)

	record := &ReceiptRecord{
		Products:    []LineItem{},
		ReceiptID:   e.idGenerator.Generate(),
		ReceiptName: receiptName(filename),
	}

	e.logger.Debug("parsing receipt text", "receipt_id", record.ReceiptID, "lines", len(lines))

	record.MerchantInfo = extractMerchantInfo(lines, e.matchers, e.logger)

	ls := &lineScanner{logger: e.logger}
	ls.scan(lines)
	record.Summary = ls.summary
	if len(ls.products) > 0 {
		record.Products = ls.products
	} else {
		e.logger.Debug("no products found, trying single-price lines", "receipt_id", record.ReceiptID)
		if products := parseSinglePriceLines(lines, e.logger); len(products) > 0 {
			record.Products = products
		}
	}

	record.ReceiptDate = extractDate(lines)

	e.logger.Debug("parsed receipt",
		"receipt_id", record.ReceiptID,
		"products", len(record.Products),
		"merchant", record.MerchantInfo.Name,
		"date", record.ReceiptDate,
	)

	return record
}
