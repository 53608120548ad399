// Command casefile-batch imports case-file bundles from the command line.
// Positional arguments name the bundles; without any, every bundle below
// --dir is imported. Metadata and the batch reports go to --out.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/a3tai/mcp-casefile-import/internal/batch"
	"github.com/a3tai/mcp-casefile-import/internal/config"
	"github.com/a3tai/mcp-casefile-import/internal/importer"
	"github.com/a3tai/mcp-casefile-import/internal/logging"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	"github.com/a3tai/mcp-casefile-import/internal/service"
)

var errNoBundles = errors.New("no PDF bundles to import")

// collectInputs returns the bundles named on the command line, or all
// bundles in the inbox directory when none are named.
func collectInputs(cfg *config.Config) ([]string, error) {
	if len(cfg.Inputs) > 0 {
		inputs := make([]string, 0, len(cfg.Inputs))
		for _, in := range cfg.Inputs {
			abs, err := filepath.Abs(in)
			if err != nil {
				return nil, fmt.Errorf("invalid input %s: %w", in, err)
			}
			inputs = append(inputs, abs)
		}
		return inputs, nil
	}

	inputs, err := pdf.NewSearch(cfg.MaxFileSize, cfg.OutputDirectory).FindBundles(cfg.InboxDirectory)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errNoBundles
	}
	return inputs, nil
}

// runBatch imports the bundles, writes one metadata file per successful
// import and the batch reports, and prints progress to out.
func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (batch.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	inputs, err := collectInputs(cfg)
	if err != nil {
		return batch.Report{}, err
	}

	pipeline, err := service.NewPipeline(cfg, logger)
	if err != nil {
		return batch.Report{}, err
	}
	if cfg.OCREnabled && !pipeline.OCRAvailable {
		fmt.Fprintln(out, "OCR is not available; scanned pages keep their text layer")
	}

	coordinator := batch.NewCoordinator(pipeline.Importer, batch.Options{
		Workers:     cfg.Workers,
		FileTimeout: cfg.FileTimeout,
		Logger:      logger,
	})

	report := coordinator.Run(ctx, inputs, func(done, total int, file string) {
		fmt.Fprintf(out, "[%d/%d] %s\n", done, total, file)
	})

	for _, res := range report.Results {
		if !res.Success {
			continue
		}
		if _, err := importer.WriteMetadata(importer.OutputDirFor(cfg.OutputDirectory, cfg.InboxDirectory, res.SourceFile), res); err != nil {
			logger.Warn("Metadata write failed", "file", res.SourceFile, "error", err)
		}
	}

	files, err := report.WriteFiles(cfg.OutputDirectory)
	if err != nil {
		return report, err
	}

	s := report.Summary
	fmt.Fprintf(out, "\nFiles: %d, succeeded: %d, failed: %d, documents: %d, average quality: %.1f\n",
		s.Total, s.Succeeded, s.Failed, s.TotalDocuments, s.AverageQuality)
	for _, res := range report.Failed() {
		fmt.Fprintf(out, "  failed: %s: %v\n", filepath.Base(res.SourceFile), res.Errors)
	}
	for _, f := range files {
		fmt.Fprintf(out, "Report: %s\n", f)
	}
	return report, nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := runBatch(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("Batch failed", "error", err)
		stop()
		os.Exit(1)
	}
	if report.Summary.Failed > 0 {
		stop()
		os.Exit(2)
	}
}
