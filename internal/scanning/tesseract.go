package scanning

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Scanner interface with a local Tesseract engine
type Tesseract struct {
	languages []string
}

// NewTesseract creates a new Tesseract Scanner. languages default to English.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}
}

// ScanText runs OCR on a receipt image or PDF
func (t *Tesseract) ScanText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	img, err := loadImage(imageData, contentType)
	if err != nil {
		return "", err
	}
	pngData, err := encodePNG(preprocessForOCR(img))
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// gosseract clients are not safe for concurrent use, so each scan gets its own
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running tesseract: %w", err)
	}
	return normalizeText(text), nil
}

// Name returns the provider name
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Close is a no-op; clients are created per scan
func (t *Tesseract) Close() error {
	return nil
}
