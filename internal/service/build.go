package service

import (
	"fmt"
	"log/slog"

	"github.com/a3tai/mcp-casefile-import/internal/config"
	"github.com/a3tai/mcp-casefile-import/internal/importer"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
	"github.com/a3tai/mcp-casefile-import/internal/ocr"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
)

// Pipeline is the importer built from a configuration together with the
// rule set it classifies with.
type Pipeline struct {
	Classifier   *intelligence.Classifier
	Importer     *importer.Importer
	OCRAvailable bool
}

// NewPipeline builds the import pipeline. OCR is enabled only when it is
// configured and the external binaries are installed; otherwise scanned
// pages keep their native text.
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	classifier := intelligence.MustDefault()
	if cfg.RulesFile != "" {
		loaded, err := intelligence.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		classifier = loaded
		logger.Info("Loaded classification rules", "file", cfg.RulesFile, "rules", len(loaded.Rules()))
	}

	var engine ocr.Engine
	if cfg.OCREnabled {
		tesseract := ocr.NewTesseract(ocr.Config{
			Language: cfg.OCRLanguage,
			DPI:      cfg.OCRDPI,
		}, logger)
		if err := tesseract.Available(); err != nil {
			logger.Warn("OCR disabled", "error", err)
		} else {
			engine = ocr.NewPool(tesseract, cfg.OCRWorkers)
		}
	}

	imp := importer.New(pdf.NewNativeOpener(cfg.MaxFileSize), classifier, engine, importer.Options{
		MinPageText:   cfg.MinPageText,
		PreviewLength: cfg.PreviewLength,
		Logger:        logger,
	})

	return &Pipeline{
		Classifier:   classifier,
		Importer:     imp,
		OCRAvailable: engine != nil,
	}, nil
}

// FromConfig builds the pipeline and wraps it in a Service
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	p, err := NewPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(p.Importer, p.Classifier, Options{
		InboxDirectory:  cfg.InboxDirectory,
		OutputDirectory: cfg.OutputDirectory,
		MaxFileSize:     cfg.MaxFileSize,
		MinPageText:     cfg.MinPageText,
		Workers:         cfg.Workers,
		FileTimeout:     cfg.FileTimeout,
		OCRAvailable:    p.OCRAvailable,
		Logger:          logger,
	})
}
