package pdf

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator checks that a bundle can be imported before the full pipeline
// runs on it.
type Validator struct {
	maxFileSize int64
	minPageText int
	opener      *NativeOpener
}

// NewValidator creates a validator. minPageText is the rune count below
// which a page is considered to have no usable text layer.
func NewValidator(maxFileSize int64, minPageText int) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
		minPageText: minPageText,
		opener:      NewNativeOpener(maxFileSize),
	}
}

// ValidateFile checks file properties, parses the structure with pdfcpu and
// samples the text layer of every page. Validation problems are reported
// in the result, not as an error.
func (v *Validator) ValidateFile(path string) (*ValidateFileResult, error) {
	result := &ValidateFileResult{
		Path:  path,
		Valid: false,
	}

	info, err := v.statFile(path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	result.Size = info.Size()

	pages, err := v.structuralPageCount(path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	result.Pages = pages

	doc, err := v.opener.OpenFile(path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	defer doc.Close()

	for page := 1; page <= doc.NumPages(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(text)) >= v.minPageText {
			result.TextPages++
		}
	}

	result.ContentType = contentType(result.Pages, result.TextPages)
	result.Valid = true
	if doc.NumPages() != pages {
		result.Message = fmt.Sprintf("page count differs between parsers: %d vs %d", pages, doc.NumPages())
	}
	return result, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(path string) bool {
	if _, err := v.statFile(path); err != nil {
		return false
	}
	_, err := v.structuralPageCount(path)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}

	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize)
	}

	return nil
}

func (v *Validator) statFile(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(path, info); err != nil {
		return nil, err
	}
	return info, nil
}

// structuralPageCount reads the cross-reference structure with pdfcpu in
// relaxed mode, the way scanner exports usually need.
func (v *Validator) structuralPageCount(path string) (count int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("invalid PDF file: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("cannot determine page count: %w", err)
	}
	return ctx.PageCount, nil
}

// contentType classifies a bundle by how many of its pages carry text
func contentType(pages, textPages int) string {
	switch {
	case pages == 0:
		return ContentTypeNoContent
	case textPages == 0:
		return ContentTypeScanned
	case textPages < pages:
		return ContentTypeMixed
	default:
		return ContentTypeText
	}
}
