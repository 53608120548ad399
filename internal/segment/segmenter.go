package segment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
)

// PageSource yields the text of each page of one bundle. Implementations
// decide how text is obtained, including any OCR fallback.
type PageSource interface {
	NumPages() int
	PageText(ctx context.Context, page int) (string, error)
}

// Outcome is the result of segmenting one bundle
type Outcome struct {
	Pages        int
	Documents    []casefile.Document
	SkippedFirst int
	SkippedLast  int
	SkippedCount int
}

// Segmenter drives a Machine over a PageSource
type Segmenter struct {
	classifier    *intelligence.Classifier
	previewLength int
	logger        *slog.Logger
}

// NewSegmenter creates a segmenter. A nil logger selects slog.Default().
func NewSegmenter(classifier *intelligence.Classifier, previewLength int, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		classifier:    classifier,
		previewLength: previewLength,
		logger:        logger,
	}
}

// Run reads every page in order and returns the detected documents. Pages
// are strictly sequential because each boundary decision depends on the
// state left by the pages before it. The context is checked between pages.
func (s *Segmenter) Run(ctx context.Context, src PageSource) (Outcome, error) {
	total := src.NumPages()
	m := NewMachine(s.classifier, s.previewLength)

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("segmentation stopped at page %d: %w", page, err)
		}

		text, err := src.PageText(ctx, page)
		if err != nil {
			return Outcome{}, fmt.Errorf("page %d: %w", page, err)
		}
		if err := m.Feed(page, text); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{Pages: total, Documents: m.Finish(total)}
	out.SkippedFirst, out.SkippedLast, out.SkippedCount = m.Skipped()

	s.logger.Debug("Segmented bundle",
		"pages", total,
		"documents", len(out.Documents),
		"skipped_pages", out.SkippedCount)

	return out, nil
}
