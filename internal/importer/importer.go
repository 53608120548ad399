// Package importer assembles the ImportResult of one bundle. It is the
// error boundary of the pipeline: whatever goes wrong below it, including
// parser panics, is reported in the result and never returned.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/coversheet"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
	"github.com/a3tai/mcp-casefile-import/internal/ocr"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	"github.com/a3tai/mcp-casefile-import/internal/quality"
	"github.com/a3tai/mcp-casefile-import/internal/segment"
)

// DefaultMinPageText is the rune count below which a page is sent to OCR
const DefaultMinPageText = 50

type Options struct {
	// MinPageText is the OCR threshold in runes of trimmed page text
	MinPageText int
	// PreviewLength is the number of runes kept as document preview
	PreviewLength int
	Logger        *slog.Logger
}

// Importer runs the pipeline for single bundles. It holds no per-import
// state and may be shared by concurrent imports.
type Importer struct {
	opener      pdf.Opener
	engine      ocr.Engine
	segmenter   *segment.Segmenter
	minPageText int
	logger      *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates an importer. engine may be nil when OCR is not available.
func New(opener pdf.Opener, classifier *intelligence.Classifier, engine ocr.Engine, opts Options) *Importer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MinPageText <= 0 {
		opts.MinPageText = DefaultMinPageText
	}
	return &Importer{
		opener:      opener,
		engine:      engine,
		segmenter:   segment.NewSegmenter(classifier, opts.PreviewLength, opts.Logger),
		minPageText: opts.MinPageText,
		logger:      opts.Logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// ImportFile imports the bundle at path
func (i *Importer) ImportFile(ctx context.Context, path string) (result casefile.ImportResult) {
	importID := i.newID()
	defer i.recoverInto(&result, importID, path)

	doc, err := i.opener.OpenFile(path)
	if err != nil {
		return i.failed(importID, path, err)
	}
	defer doc.Close()

	ocrPath := func() (string, error) { return path, nil }
	return i.run(ctx, importID, path, doc, ocrPath)
}

// ImportBytes imports a bundle held in memory, such as an upload. The data
// is written to a temporary file only if a page needs OCR.
func (i *Importer) ImportBytes(ctx context.Context, name string, data []byte) (result casefile.ImportResult) {
	importID := i.newID()
	defer i.recoverInto(&result, importID, name)

	doc, err := i.opener.OpenBytes(name, data)
	if err != nil {
		return i.failed(importID, name, err)
	}
	defer doc.Close()

	spill := &spillFile{data: data}
	defer spill.Remove(i.logger)

	return i.run(ctx, importID, name, doc, spill.Path)
}

func (i *Importer) run(ctx context.Context, importID, source string, doc pdf.Document, ocrPath func() (string, error)) casefile.ImportResult {
	start := i.now()
	pages := newPageReader(doc, i.engine, i.minPageText, ocrPath, i.logger.With("file", filepath.Base(source)))

	result := casefile.ImportResult{
		ImportID:   importID,
		ImportDate: start,
		SourceFile: source,
		PageCount:  pages.NumPages(),
		Success:    true,
		Documents:  []casefile.Document{},
		Errors:     []string{},
		Warnings:   []string{},
	}

	if result.PageCount > 0 {
		first, err := pages.PageText(ctx, 1)
		if err != nil {
			return i.failed(importID, source, fmt.Errorf("page 1: %w", err))
		}
		cover := coversheet.Extract(first)
		result.CoverSheet = &cover
	} else {
		result.Warnings = append(result.Warnings, "bundle has no pages")
	}

	outcome, err := i.segmenter.Run(ctx, pages)
	if err != nil {
		return i.failed(importID, source, err)
	}
	result.Documents = outcome.Documents

	if outcome.SkippedCount > 0 {
		result.Warnings = append(result.Warnings, skippedWarning(outcome))
	}
	result.Warnings = append(result.Warnings, pages.Warnings()...)
	result.OCRUsed = pages.ocrUsed

	result.QualityScore = quality.Score(result.CoverSheet, result.Documents)
	result.QualityLabel = quality.LabelFor(result.QualityScore)

	i.logger.Info("Imported bundle",
		"file", filepath.Base(source),
		"import_id", importID,
		"pages", result.PageCount,
		"documents", len(result.Documents),
		"ocr_used", result.OCRUsed,
		"quality_score", result.QualityScore,
		"duration_ms", i.now().Sub(start).Milliseconds())

	return result
}

func (i *Importer) failed(importID, source string, err error) casefile.ImportResult {
	i.logger.Error("Import failed", "file", filepath.Base(source), "import_id", importID, "error", err)
	r := casefile.NewFailedResult(importID, source, err)
	r.ImportDate = i.now()
	return r
}

// recoverInto turns a panic raised anywhere in the pipeline into a failed
// result.
func (i *Importer) recoverInto(result *casefile.ImportResult, importID, source string) {
	if r := recover(); r != nil {
		*result = i.failed(importID, source, fmt.Errorf("unexpected error: %v", r))
	}
}

func skippedWarning(o segment.Outcome) string {
	if o.SkippedCount == 1 {
		return fmt.Sprintf("page %d precedes the first detected document and was not assigned", o.SkippedFirst)
	}
	return fmt.Sprintf("pages %d-%d precede the first detected document and were not assigned",
		o.SkippedFirst, o.SkippedLast)
}

// spillFile writes in-memory PDF data to disk on first use
type spillFile struct {
	data []byte
	path string
	err  error
}

func (s *spillFile) Path() (string, error) {
	if s.path != "" || s.err != nil {
		return s.path, s.err
	}

	f, err := os.CreateTemp("", "casefile-*.pdf")
	if err != nil {
		s.err = fmt.Errorf("cannot create temp file: %w", err)
		return "", s.err
	}
	if _, err := f.Write(s.data); err != nil {
		f.Close()
		os.Remove(f.Name())
		s.err = fmt.Errorf("cannot write temp file: %w", err)
		return "", s.err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		s.err = fmt.Errorf("cannot write temp file: %w", err)
		return "", s.err
	}
	s.path = f.Name()
	return s.path, nil
}

func (s *spillFile) Remove(logger *slog.Logger) {
	if s.path == "" {
		return
	}
	if err := os.Remove(s.path); err != nil {
		logger.Warn("failed to remove temp file", "path", s.path, "error", err)
	}
}
