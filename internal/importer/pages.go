package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-casefile-import/internal/ocr"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	pdferrors "github.com/a3tai/mcp-casefile-import/internal/pdf/errors"
)

// pageReader serves page text to the cover sheet extractor and the
// segmenter. Text is memoised so page 1 is only read (and OCR'd) once.
// One reader belongs to exactly one import and is not safe for concurrent use.
type pageReader struct {
	doc         pdf.Document
	engine      ocr.Engine
	minPageText int
	ocrPath     func() (string, error)
	logger      *slog.Logger

	cache       map[int]string
	ocrUsed     bool
	unavailable []int
	warnings    []string
}

func newPageReader(doc pdf.Document, engine ocr.Engine, minPageText int, ocrPath func() (string, error), logger *slog.Logger) *pageReader {
	return &pageReader{
		doc:         doc,
		engine:      engine,
		minPageText: minPageText,
		ocrPath:     ocrPath,
		logger:      logger,
		cache:       make(map[int]string),
	}
}

func (r *pageReader) NumPages() int {
	return r.doc.NumPages()
}

// PageText returns the native text of the page, or the OCR text when the
// native layer is shorter than the threshold and OCR produced something.
// A broken page degrades to empty text; other extraction errors abort.
func (r *pageReader) PageText(ctx context.Context, page int) (string, error) {
	if text, ok := r.cache[page]; ok {
		return text, nil
	}

	text, err := r.doc.PageText(page)
	if err != nil {
		if !pdferrors.Recoverable(err) {
			return "", err
		}
		r.warn("page %d: text extraction failed: %v", page, err)
		text = ""
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < r.minPageText {
		text = r.recognize(ctx, page, text)
	}

	r.cache[page] = text
	return text, nil
}

func (r *pageReader) recognize(ctx context.Context, page int, native string) string {
	if r.engine == nil {
		r.unavailable = append(r.unavailable, page)
		return native
	}

	path, err := r.ocrPath()
	if err != nil {
		r.warn("page %d: OCR skipped: %v", page, err)
		return native
	}

	r.ocrUsed = true
	text, err := r.engine.RecognizePage(ctx, path, page)
	if err != nil {
		r.logger.Warn("OCR failed", "page", page, "error", err)
		r.warn("page %d: OCR failed: %v", page, err)
		return native
	}
	if strings.TrimSpace(text) == "" {
		return native
	}
	return text
}

func (r *pageReader) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the warnings collected so far, with pages that needed
// OCR while no engine was configured folded into one entry.
func (r *pageReader) Warnings() []string {
	out := append([]string(nil), r.warnings...)
	if len(r.unavailable) > 0 {
		out = append(out, fmt.Sprintf("OCR unavailable: %s with too little text kept as extracted",
			describePages(r.unavailable)))
	}
	return out
}

// describePages renders a sorted page list as "page 3" or "pages 3, 5, 9"
func describePages(pages []int) string {
	if len(pages) == 1 {
		return fmt.Sprintf("page %d", pages[0])
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return "pages " + strings.Join(parts, ", ")
}
