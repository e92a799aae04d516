package receipt

import (
	"time"

	"github.com/zombor/receipt-parser/internal/extraction"
)

// Receipt is a processed receipt together with its source file
type Receipt struct {
	extraction.ReceiptRecord

	Filename     string    `json:"filename,omitempty"` // stored file, empty once cleaned up
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Provider     string    `json:"provider"`
	RawText      string    `json:"rawText,omitempty"`
	ExtractedAt  time.Time `json:"extractedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FileInfo describes an uploaded file waiting to be processed
type FileInfo struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
