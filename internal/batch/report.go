package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

const (
	summarySheet = "Summary"
	filesSheet   = "Files"

	// ReportBaseName is the file name, without extension, of the written reports
	ReportBaseName = "batch-report"
)

// Report is the outcome of one batch run
type Report struct {
	StartedAt time.Time               `json:"started_at"`
	Duration  time.Duration           `json:"duration_ns"`
	Summary   casefile.BatchSummary   `json:"summary"`
	Results   []casefile.ImportResult `json:"results"`
}

// Failed returns the results of the files that could not be imported
func (r Report) Failed() []casefile.ImportResult {
	var out []casefile.ImportResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// WriteJSON writes the report as indented JSON
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

// WriteXLSX renders the report as a workbook with a Summary sheet and one
// row per file on the Files sheet.
func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(filesSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	summary := [][]any{
		{"Started", r.StartedAt.Format("2006-01-02 15:04:05")},
		{"Duration (s)", r.Duration.Seconds()},
		{"Files", r.Summary.Total},
		{"Succeeded", r.Summary.Succeeded},
		{"Failed", r.Summary.Failed},
		{"Documents", r.Summary.TotalDocuments},
		{"Average quality", r.Summary.AverageQuality},
		{"Files with OCR", r.Summary.OCRFiles},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx write: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "B", "B", 22)

	headers := []any{
		"File", "Success", "Pages", "Documents", "OCR", "Quality",
		"Label", "Case number", "Caption", "Errors", "Warnings",
	}
	if err := f.SetSheetRow(filesSheet, "A1", &headers); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	for i, res := range r.Results {
		var caseNumber, caption string
		if res.CoverSheet != nil {
			caseNumber = res.CoverSheet.CaseNumber
			caption = res.CoverSheet.Caption
		}
		row := []any{
			res.SourceFile,
			res.Success,
			res.PageCount,
			len(res.Documents),
			res.OCRUsed,
			res.QualityScore,
			string(res.QualityLabel),
			caseNumber,
			caption,
			strings.Join(res.Errors, "; "),
			strings.Join(res.Warnings, "; "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(filesSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx write: %w", err)
		}
	}

	_ = f.SetColWidth(filesSheet, "A", "A", 48)
	_ = f.SetColWidth(filesSheet, "H", "I", 28)
	_ = f.SetColWidth(filesSheet, "J", "K", 60)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteFiles writes batch-report.xlsx and batch-report.json into dir and
// returns their paths.
func (r Report) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	writers := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{".xlsx", r.WriteXLSX},
		{".json", r.WriteJSON},
	}

	paths := make([]string, 0, len(writers))
	for _, w := range writers {
		path := filepath.Join(dir, ReportBaseName+w.ext)
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("failed to create report: %w", err)
		}
		werr := w.write(f)
		cerr := f.Close()
		if werr != nil {
			return paths, werr
		}
		if cerr != nil {
			return paths, fmt.Errorf("failed to close report: %w", cerr)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
