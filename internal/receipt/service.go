package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-parser/internal/export"
	"github.com/zombor/receipt-parser/internal/extraction"
	"github.com/zombor/receipt-parser/internal/scanning"
)

// IDGenerator generates unique names for stored uploads
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Extractor turns OCR text into a receipt record
type Extractor interface {
	Extract(text, filename string) *extraction.ReceiptRecord
}

// Metrics receives scan and extraction observations
type Metrics interface {
	ObserveScan(engine string, elapsed time.Duration, err error)
	ObserveExtraction(products int)
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

type nopMetrics struct{}

func (nopMetrics) ObserveScan(string, time.Duration, error) {}
func (nopMetrics) ObserveExtraction(int)                    {}

// Options limits what uploads the service accepts
type Options struct {
	MaxFileSize    int64
	AllowedTypes   []string // lowercase extensions without the dot
	MaxFiles       int
	CleanupUploads bool // remove the upload once it has been processed
}

// DefaultOptions are the upload limits used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  10 << 20,
		AllowedTypes: []string{"jpg", "jpeg", "png", "pdf", "heic", "heif"},
		MaxFiles:     5,
	}
}

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   Extractor
	opts        Options
	metrics     Metrics
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator, time source and no metrics
func NewService(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, opts Options) *Service {
	return NewServiceWithDeps(db, scanner, storage, extractor, opts, nil, nil, nil)
}

// NewServiceWithDeps creates a new Service with custom dependencies; nil ones get defaults
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, opts Options, metrics Metrics, idGen IDGenerator, timeSrc TimeSource) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if idGen == nil {
		idGen = &defaultIDGenerator{}
	}
	if timeSrc == nil {
		timeSrc = &defaultTimeSource{}
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extractor,
		opts:        opts,
		metrics:     metrics,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Options returns the upload limits in effect
func (s *Service) Options() Options {
	return s.opts
}

// Provider names the OCR engine
func (s *Service) Provider() string {
	return s.scanner.Name()
}

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaceRun        = regexp.MustCompile(`\s+`)
)

// sanitizeName cleans a user supplied name for use in a download filename
func sanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = spaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	const maxLen = 80
	if len(name) > maxLen {
		name = name[:maxLen]
	}

	if name == "" {
		name = "receipt"
	}
	return name
}

// validate checks an upload against the configured type and size limits
func (s *Service) validate(u Upload) error {
	if len(u.Data) == 0 {
		return ErrNoFile
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Filename)), ".")
	if !slices.Contains(s.opts.AllowedTypes, ext) {
		return fmt.Errorf("%w. Allowed types: %s", ErrInvalidFileType, strings.Join(s.opts.AllowedTypes, ", "))
	}
	if s.opts.MaxFileSize > 0 && int64(len(u.Data)) > s.opts.MaxFileSize {
		return fmt.Errorf("%s is %d bytes: %w", u.Filename, len(u.Data), ErrFileTooLarge)
	}
	return nil
}

// store writes validated upload bytes under a fresh name and keeps the original extension
func (s *Service) store(u Upload) (string, error) {
	name := s.idGenerator.Generate() + strings.ToLower(filepath.Ext(u.Filename))
	saved, err := s.storage.Save(name, u.Data)
	if err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}
	return saved, nil
}

// UploadFile stores one file for later processing
func (s *Service) UploadFile(u Upload) (*FileInfo, error) {
	if err := s.validate(u); err != nil {
		return nil, err
	}
	return s.saveUpload(u)
}

// UploadFiles stores up to MaxFiles files; nothing is stored if any file is rejected
func (s *Service) UploadFiles(uploads []Upload) ([]*FileInfo, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFile
	}
	if s.opts.MaxFiles > 0 && len(uploads) > s.opts.MaxFiles {
		return nil, fmt.Errorf("%d files, maximum is %d: %w", len(uploads), s.opts.MaxFiles, ErrTooManyFiles)
	}
	for _, u := range uploads {
		if err := s.validate(u); err != nil {
			return nil, err
		}
	}

	infos := make([]*FileInfo, 0, len(uploads))
	for _, u := range uploads {
		info, err := s.saveUpload(u)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Service) saveUpload(u Upload) (*FileInfo, error) {
	saved, err := s.store(u)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		ID:           s.idGenerator.Generate(),
		Filename:     saved,
		OriginalName: u.Filename,
		Path:         s.storage.Path(saved),
		Size:         int64(len(u.Data)),
		ContentType:  u.ContentType,
		UploadedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveUpload(info); err != nil {
		s.storage.Delete(saved)
		return nil, fmt.Errorf("saving upload to database: %w", err)
	}
	return info, nil
}

// scan runs the OCR engine and the extractor over one file
func (s *Service) scan(ctx context.Context, originalName string, data []byte, contentType string) (*Receipt, error) {
	engine := s.scanner.Name()
	start := s.timeSource.Now()
	text, err := s.scanner.ScanText(ctx, data, contentType)
	s.metrics.ObserveScan(engine, s.timeSource.Now().Sub(start), err)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", originalName,
			"content_type", contentType,
			"file_size", len(data),
			"engine", engine,
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	record := s.extractor.Extract(text, originalName)
	s.metrics.ObserveExtraction(len(record.Products))

	now := s.timeSource.Now()
	return &Receipt{
		ReceiptRecord: *record,
		OriginalName:  originalName,
		ContentType:   contentType,
		Provider:      engine,
		RawText:       text,
		ExtractedAt:   now,
		CreatedAt:     now,
	}, nil
}

// ProcessFile scans a previously uploaded file and saves the result.
// A non-empty receiptName replaces the name derived from the original filename.
func (s *Service) ProcessFile(ctx context.Context, storedName, receiptName string) (*Receipt, error) {
	if storedName == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrInvalidData)
	}

	info, err := s.db.GetUpload(storedName)
	if err != nil {
		return nil, fmt.Errorf("getting upload: %w", err)
	}
	data, err := s.storage.Get(info.Filename)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	receipt, err := s.scan(ctx, info.OriginalName, data, info.ContentType)
	if err != nil {
		return nil, err
	}
	if receiptName != "" {
		receipt.ReceiptName = receiptName
	}
	receipt.Filename = info.Filename
	if s.opts.CleanupUploads {
		receipt.Filename = ""
	}

	// the upload stays until the receipt is saved so a failed save can be retried
	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	if s.opts.CleanupUploads {
		s.cleanup(info.Filename)
	}
	return receipt, nil
}

// cleanup drops a processed upload; failures are only logged
func (s *Service) cleanup(storedName string) {
	if err := s.storage.Delete(storedName); err != nil {
		slog.Warn("Failed to cleanup uploaded file", "filename", storedName, "error", err)
	}
	if err := s.db.DeleteUpload(storedName); err != nil {
		slog.Warn("Failed to forget upload", "filename", storedName, "error", err)
	}
}

// ProcessReceipt stores a file, scans it, and saves the receipt in one step
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Receipt, error) {
	u := Upload{Filename: filename, ContentType: contentType, Data: data}
	if err := s.validate(u); err != nil {
		return nil, err
	}

	saved, err := s.store(u)
	if err != nil {
		return nil, err
	}

	receipt, err := s.scan(ctx, filename, data, contentType)
	if err != nil {
		s.storage.Delete(saved)
		return nil, err
	}
	receipt.Filename = saved

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.storage.Delete(saved)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	return receipt, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if receipt.Filename != "" {
		if err := s.storage.Delete(receipt.Filename); err != nil {
			slog.Warn("Failed to delete file", "filename", receipt.Filename, "error", err)
		}
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the file data for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}
	if receipt.Filename == "" {
		return nil, "", fmt.Errorf("receipt %s has no stored file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}

// Status reports "completed" for a receipt that has been processed
func (s *Service) Status(id string) (string, error) {
	if _, err := s.db.GetReceipt(id); err != nil {
		return "", fmt.Errorf("getting status: %w", err)
	}
	return "completed", nil
}

// CSVName is the download name, without extension, for a record
func CSVName(rec *extraction.ReceiptRecord) string {
	name := rec.ReceiptName
	if name == "" {
		name = "receipt"
	}
	return sanitizeName(name + "_" + rec.ReceiptID)
}

// ReceiptCSV renders a stored receipt as CSV
func (s *Service) ReceiptCSV(id string) ([]byte, string, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return nil, "", err
	}
	data, err := export.CSV(&receipt.ReceiptRecord)
	if err != nil {
		return nil, "", fmt.Errorf("rendering csv: %w", err)
	}
	return data, CSVName(&receipt.ReceiptRecord), nil
}

// ReceiptXLSX renders a stored receipt as an XLSX workbook
func (s *Service) ReceiptXLSX(id string) ([]byte, string, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return nil, "", err
	}
	data, err := export.XLSX(&receipt.ReceiptRecord)
	if err != nil {
		return nil, "", fmt.Errorf("rendering xlsx: %w", err)
	}
	return data, CSVName(&receipt.ReceiptRecord), nil
}
