package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-parser/internal/export"
	"github.com/zombor/receipt-parser/internal/extraction"
)

const (
	singleUploadField   = "receipt"
	multipleUploadField = "receipts"
	receiptFileField    = "file"
	multipartMemory     = 32 << 20
)

// envelope is the body of every JSON error response
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps err onto the API error envelope
func (s *Server) writeError(w http.ResponseWriter, err error) {
	apiErr := classify(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	body := envelope{Success: false, Message: apiErr.Message, Code: apiErr.Code}
	if s.config.Environment == "development" {
		body.Error = err.Error()
	}
	writeJSON(w, apiErr.Status, body)
}

// attachment sends data as a file download
func attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// contentTypeFor falls back to the extension when the client sent no type
func contentTypeFor(fh *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// readUploads parses the multipart body and returns the files sent in field.
// Files in any other field are rejected.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string, maxFiles int) ([]Upload, error) {
	opts := s.service.Options()
	if opts.MaxFileSize > 0 {
		limit := opts.MaxFileSize*int64(max(maxFiles, 1)) + 1<<20
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: parsing form: %v", ErrInvalidData, err)
	}

	for name := range r.MultipartForm.File {
		if name != field {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedFile, name)
		}
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, ErrNoFile
	}
	if len(headers) > maxFiles {
		if maxFiles == 1 {
			return nil, ErrUnexpectedFile
		}
		return nil, ErrTooManyFiles
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		if opts.MaxFileSize > 0 && fh.Size > opts.MaxFileSize {
			return nil, fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, Upload{
			Filename:    fh.Filename,
			ContentType: contentTypeFor(fh),
			Data:        data,
		})
	}
	return uploads, nil
}

// handleHealth reports that the service is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Receipt Processing API is running",
		"timestamp":   s.now().UTC(),
		"version":     s.config.Version,
		"environment": s.config.Environment,
	})
}

// handleUpload stores one file from the "receipt" field
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.readUploads(w, r, singleUploadField, 1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	info, err := s.service.UploadFile(uploads[0])
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "File uploaded successfully",
		"file":    info,
	})
}

// handleUploadMultiple stores every file from the "receipts" field
func (s *Server) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.readUploads(w, r, multipleUploadField, s.service.Options().MaxFiles)
	if err != nil {
		s.writeError(w, err)
		return
	}

	infos, err := s.service.UploadFiles(uploads)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d files uploaded successfully", len(infos)),
		"files":   infos,
	})
}

type processRequest struct {
	FilePath    string `json:"filePath"`
	ReceiptName string `json:"receiptName,omitempty"`
}

func decodeProcessRequest(r *http.Request) (processRequest, error) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: invalid request body", ErrInvalidData)
	}
	if req.FilePath == "" {
		return req, fmt.Errorf("%w: file path is required", ErrInvalidData)
	}
	return req, nil
}

// handleProcess runs OCR and extraction over an uploaded file
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	receipt, err := s.service.ProcessFile(r.Context(), req.FilePath, req.ReceiptName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Receipt processed successfully",
		"data":        receipt.ReceiptRecord,
		"provider":    receipt.Provider,
		"extractedAt": receipt.ExtractedAt.UTC(),
	})
}

type csvRequest struct {
	Data     *extraction.ReceiptRecord `json:"data"`
	Filename string                    `json:"filename,omitempty"`
}

// handleCSV renders a record posted by the client
func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	var req csvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == nil || req.Data.Products == nil {
		s.writeError(w, fmt.Errorf("%w: Invalid data provided", ErrInvalidData))
		return
	}

	name := CSVName(req.Data)
	if req.Filename != "" {
		name = sanitizeName(req.Filename)
	}

	data, err := export.CSV(req.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	attachment(w, "text/csv", name+".csv", data)
}

// handleProcessAndCSV processes an upload and answers with its CSV
func (s *Server) handleProcessAndCSV(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	receipt, err := s.service.ProcessFile(r.Context(), req.FilePath, req.ReceiptName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := req.ReceiptName
	if name == "" {
		name = receipt.ReceiptName
	}

	data, err := export.CSV(&receipt.ReceiptRecord)
	if err != nil {
		s.writeError(w, err)
		return
	}
	attachment(w, "text/csv", sanitizeName(name)+".csv", data)
}

// handleStatus reports whether a receipt has been processed
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	status, err := s.service.Status(jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Processing status",
		"jobId":   jobID,
		"status":  status,
	})
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

// handleUploadReceipt uploads and processes a receipt in one request
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.readUploads(w, r, receiptFileField, 1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	u := uploads[0]

	receipt, err := s.service.ProcessReceipt(r.Context(), u.Filename, u.Data, u.ContentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", u.Filename, "error", err)
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the file for a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleReceiptCSV downloads a stored receipt as CSV
func (s *Server) handleReceiptCSV(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.ReceiptCSV(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	attachment(w, "text/csv", name+".csv", data)
}

// handleReceiptXLSX downloads a stored receipt as a workbook
func (s *Server) handleReceiptXLSX(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.ReceiptXLSX(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name+".xlsx", data)
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
