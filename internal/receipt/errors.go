package receipt

import (
	"errors"
	"net/http"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnexpectedFile  = errors.New("unexpected file field")
	ErrNotFound        = errors.New("not found")
	ErrInvalidData     = errors.New("invalid data")
)

// apiError is the status, machine code and message a handler reports for an error
type apiError struct {
	Status  int
	Code    string
	Message string
}

// classify maps service errors onto API errors; anything unknown is internal
func classify(err error) apiError {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return apiError{http.StatusBadRequest, "FILE_TOO_LARGE", "File too large."}
	case errors.Is(err, ErrUnexpectedFile):
		return apiError{http.StatusBadRequest, "UNEXPECTED_FILE", "Unexpected file field."}
	case errors.Is(err, ErrTooManyFiles):
		return apiError{http.StatusBadRequest, "TOO_MANY_FILES", "Too many files."}
	case errors.Is(err, ErrInvalidFileType):
		return apiError{http.StatusBadRequest, "INVALID_FILE_FORMAT", err.Error()}
	case errors.Is(err, ErrNoFile):
		return apiError{http.StatusBadRequest, "INVALID_DATA", "No file uploaded"}
	case errors.Is(err, ErrNotFound):
		return apiError{http.StatusNotFound, "NOT_FOUND", "Not found"}
	case errors.Is(err, ErrInvalidData):
		return apiError{http.StatusBadRequest, "INVALID_DATA", err.Error()}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"}
	}
}
