package scanning

import "context"

// Scanner recognizes the text printed on a receipt image
type Scanner interface {
	// ScanText returns the raw text of a receipt image or PDF
	ScanText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Name identifies the OCR provider
	Name() string
	// Close closes the scanner and releases resources
	Close() error
}
