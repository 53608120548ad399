package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	pdferrors "github.com/a3tai/mcp-casefile-import/internal/pdf/errors"
)

// pdfHeader is the magic prefix of every PDF file
const pdfHeader = "%PDF-"

// Document gives per-page access to the text of an opened PDF. Pages are
// 1-based. A page without extractable text yields "" and no error.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
	Close() error
}

// Opener opens bundles from disk or memory
type Opener interface {
	OpenFile(path string) (Document, error)
	OpenBytes(name string, data []byte) (Document, error)
}

// NativeOpener reads the embedded text layer of a PDF
type NativeOpener struct {
	maxFileSize int64
}

// NewNativeOpener creates an opener that rejects inputs above maxFileSize
// bytes. Zero or less disables the limit.
func NewNativeOpener(maxFileSize int64) *NativeOpener {
	return &NativeOpener{maxFileSize: maxFileSize}
}

// OpenFile opens the PDF at path
func (o *NativeOpener) OpenFile(path string) (doc Document, err error) {
	if path == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "cannot access file", err).WithFile(path)
	}
	if info.IsDir() {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "path is a directory, not a file").WithFile(path)
	}
	if err := o.checkSize(info.Size()); err != nil {
		return nil, err.WithFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "cannot open file", err).WithFile(path)
	}
	head := make([]byte, len(pdfHeader))
	if _, err := io.ReadFull(f, head); err != nil || string(head) != pdfHeader {
		f.Close()
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidHeader, "missing %PDF- header").WithFile(path)
	}

	defer func() {
		if r := recover(); r != nil {
			f.Close()
			doc = nil
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeCorruptedData, fmt.Sprintf("failed to parse PDF: %v", r)).WithFile(path)
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeCorruptedData, "failed to open PDF", err).WithFile(path)
	}

	return newNativeDocument(reader, f, path), nil
}

// OpenBytes opens a PDF held in memory. name is only used in messages.
func (o *NativeOpener) OpenBytes(name string, data []byte) (doc Document, err error) {
	if err := o.checkSize(int64(len(data))); err != nil {
		return nil, err.WithFile(name)
	}
	if !bytes.HasPrefix(data, []byte(pdfHeader)) {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidHeader, "missing %PDF- header").WithFile(name)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeCorruptedData, fmt.Sprintf("failed to parse PDF: %v", r)).WithFile(name)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeCorruptedData, "failed to open PDF", err).WithFile(name)
	}

	return newNativeDocument(reader, nil, name), nil
}

func (o *NativeOpener) checkSize(size int64) *pdferrors.PDFError {
	if size == 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "file is empty")
	}
	if o.maxFileSize > 0 && size > o.maxFileSize {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", size, o.maxFileSize))
	}
	return nil
}

type nativeDocument struct {
	reader *pdf.Reader
	closer io.Closer
	name   string
	pages  int
}

func newNativeDocument(reader *pdf.Reader, closer io.Closer, name string) *nativeDocument {
	return &nativeDocument{
		reader: reader,
		closer: closer,
		name:   name,
		pages:  reader.NumPage(),
	}
}

func (d *nativeDocument) NumPages() int {
	return d.pages
}

// PageText extracts the plain text of one page. Parser panics on a broken
// page are turned into a recoverable MALFORMED_PAGE error.
func (d *nativeDocument) PageText(page int) (text string, err error) {
	if page < 1 || page > d.pages {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile,
			fmt.Sprintf("page %d out of range 1..%d", page, d.pages)).WithFile(d.name)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedPage,
				fmt.Sprintf("failed to extract text: %v", r)).WithFile(d.name).WithPage(page)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	content, err := p.GetPlainText(nil)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeMalformedPage, "failed to extract text", err).
			WithFile(d.name).WithPage(page)
	}

	return NormalizeText(content), nil
}

func (d *nativeDocument) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// NormalizeText converts text to NFC and unifies line endings so that
// patterns written with precomposed umlauts match decomposed input too.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}
