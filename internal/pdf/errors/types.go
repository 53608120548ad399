package errors

import (
	"errors"
	"fmt"
)

// PDFError describes a failure while reading a case-file bundle, with enough
// context to be shown to a user as-is.
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType represents the category of an ingestion error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidFile
	ErrorTypeFileTooLarge
	ErrorTypeInvalidHeader
	ErrorTypeCorruptedData
	ErrorTypeMalformedPage
	ErrorTypeTimeout
	ErrorTypeOCRFailed
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.PageNumber > 0 {
		msg += fmt.Sprintf(" (page %d)", e.PageNumber)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidFile:
		return "INVALID_FILE"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorTypeInvalidHeader:
		return "INVALID_HEADER"
	case ErrorTypeCorruptedData:
		return "CORRUPTED_DATA"
	case ErrorTypeMalformedPage:
		return "MALFORMED_PAGE"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeOCRFailed:
		return "OCR_FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether an import can continue after an error of
// this type. Page-level problems degrade the result; file-level ones abort it.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeMalformedPage, ErrorTypeOCRFailed:
		return true
	default:
		return false
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
	if err != nil {
		e.Context = err.Error()
	}
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// IsType reports whether err is (or wraps) a PDFError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type == errorType
	}
	return false
}

// Recoverable reports whether err is a recoverable PDFError.
func Recoverable(err error) bool {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type.IsRecoverable()
	}
	return false
}
