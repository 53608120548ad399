// Package batch imports many bundles concurrently. Files are isolated from
// each other: a corrupt file, a panic or a timeout only fails that file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	pdferrors "github.com/a3tai/mcp-casefile-import/internal/pdf/errors"
)

const (
	DefaultWorkers     = 4
	DefaultFileTimeout = 5 * time.Minute
)

// FileImporter imports a single bundle. It must report failures in the
// result rather than by panicking, but the coordinator copes with both.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) casefile.ImportResult
}

// Progress is called once per finished file with the number of files done
// so far, the batch size and the base name of the file.
type Progress func(done, total int, file string)

type Options struct {
	Workers     int
	FileTimeout time.Duration
	Logger      *slog.Logger
}

// Coordinator runs a FileImporter over a list of bundles
type Coordinator struct {
	importer FileImporter
	workers  int
	timeout  time.Duration
	logger   *slog.Logger
}

func NewCoordinator(importer FileImporter, opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = DefaultFileTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator{
		importer: importer,
		workers:  opts.Workers,
		timeout:  opts.FileTimeout,
		logger:   opts.Logger,
	}
}

type indexed struct {
	index  int
	result casefile.ImportResult
}

// Run imports every input and returns one result per input, in input
// order. Files are processed by at most Workers goroutines; the results
// are folded into the summary by a single consumer. progress may be nil.
func (c *Coordinator) Run(ctx context.Context, inputs []string, progress Progress) Report {
	started := time.Now()
	report := Report{
		StartedAt: started,
		Results:   make([]casefile.ImportResult, len(inputs)),
	}

	results := make(chan indexed)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		done := 0
		for r := range results {
			report.Results[r.index] = r.result
			report.Summary.Add(r.result)
			done++
			if progress != nil {
				progress(done, len(inputs), filepath.Base(inputs[r.index]))
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, path := range inputs {
		g.Go(func() error {
			results <- indexed{index: i, result: c.runFile(ctx, path)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-consumed

	report.Duration = time.Since(started)
	c.logger.Info("Batch finished",
		"files", report.Summary.Total,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"documents", report.Summary.TotalDocuments,
		"duration_ms", report.Duration.Milliseconds())

	return report
}

// runFile imports one file under its own deadline. When the deadline
// passes first the import is abandoned: its goroutine keeps running until
// it notices the cancelled context, but its result is discarded.
func (c *Coordinator) runFile(ctx context.Context, path string) casefile.ImportResult {
	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan casefile.ImportResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Import panicked", "file", filepath.Base(path), "panic", r)
				done <- failedResult(path, fmt.Errorf("unexpected error: %v", r))
			}
		}()
		done <- c.importer.ImportFile(fctx, path)
	}()

	select {
	case r := <-done:
		return r
	case <-fctx.Done():
		err := fctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = pdferrors.WrapError(pdferrors.ErrorTypeTimeout,
				fmt.Sprintf("processing exceeded %s", c.timeout), err).WithFile(path)
		}
		c.logger.Warn("Import abandoned", "file", filepath.Base(path), "error", err)
		return failedResult(path, err)
	}
}

func failedResult(path string, err error) casefile.ImportResult {
	r := casefile.NewFailedResult(uuid.NewString(), path, err)
	r.ImportDate = time.Now()
	return r
}
