// Package service is the application layer shared by the tool server and
// the command line. It confines every path to the inbox, runs imports and
// batches, and writes split documents, metadata and reports to the output
// directory.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/a3tai/mcp-casefile-import/internal/batch"
	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/importer"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	"github.com/a3tai/mcp-casefile-import/internal/pdf/security"
)

type Options struct {
	InboxDirectory  string
	OutputDirectory string
	MaxFileSize     int64
	MinPageText     int
	Workers         int
	FileTimeout     time.Duration
	// OCRAvailable is reported by ServerInfo only
	OCRAvailable bool
	Logger       *slog.Logger
}

// Service wires the pipeline to the inbox and output directories
type Service struct {
	paths       *security.PathValidator
	validator   *pdf.Validator
	search      *pdf.Search
	splitter    *pdf.Splitter
	importer    *importer.Importer
	coordinator *batch.Coordinator
	classifier  *intelligence.Classifier

	outputDir    string
	maxFileSize  int64
	ocrAvailable bool
	logger       *slog.Logger
}

// ImportRequest asks for one bundle to be imported
type ImportRequest struct {
	Path          string   `json:"path"`
	Split         bool     `json:"split"`
	WriteMetadata bool     `json:"write_metadata"`
	Categories    []string `json:"categories,omitempty"` // restricts splitting; empty means all
}

// ImportResponse carries the import result and whatever was written
type ImportResponse struct {
	Result          casefile.ImportResult `json:"result"`
	CaseRecord      *casefile.CaseRecord  `json:"case_record,omitempty"`
	OutputDirectory string                `json:"output_directory,omitempty"`
	MetadataFile    string                `json:"metadata_file,omitempty"`
}

// BatchRequest lists the bundles of a batch. Paths wins over Directory;
// with neither the whole inbox is imported.
type BatchRequest struct {
	Directory     string   `json:"directory,omitempty"`
	Paths         []string `json:"paths,omitempty"`
	WriteMetadata bool     `json:"write_metadata"`
}

// BatchResponse is the batch report plus the report files written
type BatchResponse struct {
	Report      batch.Report `json:"report"`
	ReportFiles []string     `json:"report_files"`
}

// New creates the service. classifier is only consulted for ServerInfo;
// imp must have been built with the same rule set.
func New(imp *importer.Importer, classifier *intelligence.Classifier, opts Options) (*Service, error) {
	if imp == nil {
		return nil, fmt.Errorf("importer cannot be nil")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	paths, err := security.NewPathValidator(opts.InboxDirectory)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.OutputDirectory) == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	return &Service{
		paths:     paths,
		validator: pdf.NewValidator(opts.MaxFileSize, opts.MinPageText),
		search:    pdf.NewSearch(opts.MaxFileSize, opts.OutputDirectory),
		splitter:  pdf.NewSplitter(),
		importer:  imp,
		coordinator: batch.NewCoordinator(imp, batch.Options{
			Workers:     opts.Workers,
			FileTimeout: opts.FileTimeout,
			Logger:      opts.Logger,
		}),
		classifier:   classifier,
		outputDir:    opts.OutputDirectory,
		maxFileSize:  opts.MaxFileSize,
		ocrAvailable: opts.OCRAvailable,
		logger:       opts.Logger,
	}, nil
}

// InboxDirectory returns the absolute inbox directory
func (s *Service) InboxDirectory() string {
	return s.paths.Root()
}

// OutputDirectory returns the directory results are written to
func (s *Service) OutputDirectory() string {
	return s.outputDir
}

// Import imports one bundle from the inbox. Pipeline failures are reported
// in the result; an error is only returned for a rejected request.
// Problems while writing split files or metadata become warnings.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResponse, error) {
	path, err := s.paths.Resolve(req.Path)
	if err != nil {
		return nil, err
	}
	categories, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}

	result := s.importer.ImportFile(ctx, path)
	resp := &ImportResponse{Result: result}
	if !result.Success || (!req.Split && !req.WriteMetadata) {
		resp.CaseRecord = caseRecord(resp.Result)
		return resp, nil
	}

	outDir := importer.OutputDirFor(s.outputDir, s.paths.Root(), path)
	if req.Split {
		split, err := importer.SplitDocuments(ctx, s.splitter, resp.Result, path, outDir, categories)
		if err != nil {
			s.logger.Warn("Split failed", "file", path, "error", err)
			resp.Result.Warnings = append(resp.Result.Warnings, fmt.Sprintf("split failed: %v", err))
		} else {
			resp.Result = split
			resp.OutputDirectory = outDir
		}
	}
	if req.WriteMetadata {
		meta, err := importer.WriteMetadata(outDir, resp.Result)
		if err != nil {
			s.logger.Warn("Metadata write failed", "file", path, "error", err)
			resp.Result.Warnings = append(resp.Result.Warnings, fmt.Sprintf("metadata not written: %v", err))
		} else {
			resp.MetadataFile = meta
			resp.OutputDirectory = outDir
		}
	}

	resp.CaseRecord = caseRecord(resp.Result)
	return resp, nil
}

// Batch imports several bundles and writes the batch reports into the
// output directory.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	inputs, err := s.batchInputs(req)
	if err != nil {
		return nil, err
	}

	report := s.coordinator.Run(ctx, inputs, func(done, total int, file string) {
		s.logger.Info("Batch progress", "done", done, "total", total, "file", file)
	})

	if req.WriteMetadata {
		for idx, res := range report.Results {
			if !res.Success {
				continue
			}
			if _, err := importer.WriteMetadata(importer.OutputDirFor(s.outputDir, s.paths.Root(), res.SourceFile), res); err != nil {
				s.logger.Warn("Metadata write failed", "file", res.SourceFile, "error", err)
				report.Results[idx].Warnings = append(report.Results[idx].Warnings,
					fmt.Sprintf("metadata not written: %v", err))
			}
		}
	}

	files, err := report.WriteFiles(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to write batch report: %w", err)
	}
	return &BatchResponse{Report: report, ReportFiles: files}, nil
}

func (s *Service) batchInputs(req BatchRequest) ([]string, error) {
	if len(req.Paths) > 0 {
		inputs := make([]string, 0, len(req.Paths))
		for _, p := range req.Paths {
			if strings.TrimSpace(p) == "" {
				continue
			}
			abs, err := s.paths.Resolve(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, abs)
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("no paths given")
		}
		return inputs, nil
	}

	dir, err := s.resolveDirectory(req.Directory)
	if err != nil {
		return nil, err
	}
	inputs, err := s.search.FindBundles(dir)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no PDF bundles found in %s", dir)
	}
	return inputs, nil
}

// SearchDirectory lists bundles below a directory of the inbox. An empty
// directory means the inbox itself.
func (s *Service) SearchDirectory(req pdf.SearchDirectoryRequest) (*pdf.SearchDirectoryResult, error) {
	dir, err := s.resolveDirectory(req.Directory)
	if err != nil {
		return nil, err
	}
	req.Directory = dir
	return s.search.SearchDirectory(req)
}

// Validate checks a single bundle of the inbox
func (s *Service) Validate(path string) (*pdf.ValidateFileResult, error) {
	abs, err := s.paths.Resolve(path)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateFile(abs)
}

func (s *Service) resolveDirectory(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = s.paths.Root()
	}
	abs, err := s.paths.Resolve(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

func parseCategories(names []string) ([]casefile.Category, error) {
	var out []casefile.Category
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c := casefile.Category(strings.ToLower(name))
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category: %s", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func caseRecord(r casefile.ImportResult) *casefile.CaseRecord {
	rec, ok := casefile.ToCaseRecord(r)
	if !ok {
		return nil
	}
	return &rec
}
