package ocr

import (
	"context"

	"golang.org/x/sync/semaphore"

	pdferrors "github.com/a3tai/mcp-casefile-import/internal/pdf/errors"
)

// Pool bounds the number of OCR jobs running at once across all imports
type Pool struct {
	engine Engine
	sem    *semaphore.Weighted
}

// NewPool wraps engine so that at most size pages are recognised in parallel
func NewPool(engine Engine, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{engine: engine, sem: semaphore.NewWeighted(int64(size))}
}

func (p *Pool) RecognizePage(ctx context.Context, pdfPath string, page int) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeOCRFailed, "waiting for OCR slot", err).
			WithFile(pdfPath).WithPage(page)
	}
	defer p.sem.Release(1)

	return p.engine.RecognizePage(ctx, pdfPath, page)
}
