package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/importer"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	"github.com/a3tai/mcp-casefile-import/internal/pdf/pdftest"
)

// funcImporter adapts a function to FileImporter
type funcImporter func(ctx context.Context, path string) casefile.ImportResult

func (f funcImporter) ImportFile(ctx context.Context, path string) casefile.ImportResult {
	return f(ctx, path)
}

func okResult(path string, docs int) casefile.ImportResult {
	return casefile.ImportResult{
		ImportID:     "id-" + path,
		SourceFile:   path,
		Success:      true,
		Documents:    make([]casefile.Document, docs),
		QualityScore: 80,
		QualityLabel: casefile.QualityExcellent,
	}
}

func TestRun_RealBundlesWithOneCorrupt(t *testing.T) {
	dir := t.TempDir()
	first := pdftest.WriteFile(t, dir, "a.pdf",
		"AKTENVORBLATT\nMeier ./. Beispiel AG\nAktennummer: 00042/24",
		"Vollmacht\nHiermit erteile ich Rechtsanwalt Klein Vollmacht in Sachen Meier gegen Beispiel AG.")
	corrupt := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(corrupt, []byte("%PDF-1.4\nthis is not really a pdf"), 0o644))
	third := pdftest.WriteFile(t, dir, "c.pdf",
		"Rechnung Nr. 2024-17 vom 1. Maerz 2024 ueber das Honorar fuer die Taetigkeit")

	imp := importer.New(pdf.NewNativeOpener(0), intelligence.MustDefault(), nil, importer.Options{})
	report := NewCoordinator(imp, Options{Workers: 2}).Run(context.Background(), []string{first, corrupt, third}, nil)

	require.Len(t, report.Results, 3)
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.Succeeded)

	assert.True(t, report.Results[0].Success)
	assert.False(t, report.Results[1].Success)
	assert.Equal(t, corrupt, report.Results[1].SourceFile)
	require.Len(t, report.Results[1].Errors, 1)
	assert.Contains(t, report.Results[1].Errors[0], "b.pdf")
	assert.True(t, report.Results[2].Success)

	require.Len(t, report.Failed(), 1)
}

func TestRun_KeepsInputOrderAndReportsProgress(t *testing.T) {
	inputs := []string{"one.pdf", "two.pdf", "three.pdf", "four.pdf", "five.pdf"}
	imp := funcImporter(func(_ context.Context, path string) casefile.ImportResult {
		time.Sleep(time.Duration(len(path)) * time.Millisecond)
		return okResult(path, 2)
	})

	var (
		mu    sync.Mutex
		dones []int
		files []string
	)
	progress := func(done, total int, file string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(inputs), total)
		dones = append(dones, done)
		files = append(files, file)
	}

	report := NewCoordinator(imp, Options{Workers: 3}).Run(context.Background(), inputs, progress)

	for i, in := range inputs {
		assert.Equal(t, in, report.Results[i].SourceFile)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, dones)
	assert.ElementsMatch(t, inputs, files)
	assert.Equal(t, 10, report.Summary.TotalDocuments)
	assert.InDelta(t, 80.0, report.Summary.AverageQuality, 1e-9)
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	imp := funcImporter(func(_ context.Context, path string) casefile.ImportResult {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return okResult(path, 1)
	})

	inputs := make([]string, 12)
	for i := range inputs {
		inputs[i] = filepath.Join("inbox", string(rune('a'+i))+".pdf")
	}
	NewCoordinator(imp, Options{Workers: 2}).Run(context.Background(), inputs, nil)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_TimeoutAbandonsFile(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	imp := funcImporter(func(_ context.Context, path string) casefile.ImportResult {
		if strings.Contains(path, "stuck") {
			// ignores its context on purpose
			<-release
		}
		return okResult(path, 1)
	})

	start := time.Now()
	report := NewCoordinator(imp, Options{Workers: 2, FileTimeout: 50 * time.Millisecond}).
		Run(context.Background(), []string{"fine.pdf", "stuck.pdf", "also-fine.pdf"}, nil)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, report.Results[0].Success)
	assert.True(t, report.Results[2].Success)

	stuck := report.Results[1]
	assert.False(t, stuck.Success)
	require.Len(t, stuck.Errors, 1)
	assert.Contains(t, stuck.Errors[0], "TIMEOUT")
	assert.Equal(t, 1, report.Summary.Failed)
}

func TestRun_PanicIsIsolated(t *testing.T) {
	imp := funcImporter(func(_ context.Context, path string) casefile.ImportResult {
		if path == "boom.pdf" {
			panic("nil map")
		}
		return okResult(path, 1)
	})

	report := NewCoordinator(imp, Options{}).Run(context.Background(), []string{"boom.pdf", "ok.pdf"}, nil)

	assert.False(t, report.Results[0].Success)
	assert.Contains(t, report.Results[0].Errors[0], "nil map")
	assert.True(t, report.Results[1].Success)
}

func TestRun_Empty(t *testing.T) {
	report := NewCoordinator(funcImporter(func(context.Context, string) casefile.ImportResult {
		t.Error("importer must not be called")
		return casefile.ImportResult{}
	}), Options{}).Run(context.Background(), nil, nil)

	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Summary.Total)
}

func sampleReport() Report {
	ok := okResult("/inbox/a.pdf", 3)
	ok.CoverSheet = &casefile.CoverSheet{CaseNumber: "00123/24", Caption: "Müller ./. Schmidt GmbH"}
	failed := casefile.NewFailedResult("id-b", "/inbox/b.pdf", assert.AnError)

	r := Report{StartedAt: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), Duration: 2 * time.Second}
	r.Results = []casefile.ImportResult{ok, failed}
	r.Summary = casefile.Summarize(r.Results)
	return r
}

func TestReport_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Files"}, f.GetSheetList())

	failed, err := f.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "1", failed)

	rows, err := f.GetRows("Files")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "File", rows[0][0])
	assert.Equal(t, "/inbox/a.pdf", rows[1][0])
	assert.Equal(t, "00123/24", rows[1][7])
	assert.Equal(t, "Müller ./. Schmidt GmbH", rows[1][8])
	assert.Equal(t, "/inbox/b.pdf", rows[2][0])
	assert.Contains(t, rows[2][9], "failed to analyse b.pdf")
}

func TestReport_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var decoded struct {
		Summary casefile.BatchSummary `json:"summary"`
		Results []map[string]any      `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Summary.Total)
	assert.Equal(t, 1, decoded.Summary.Failed)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, []any{}, decoded.Results[0]["errors"])
	assert.Equal(t, false, decoded.Results[1]["success"])
}

func TestReport_WriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := sampleReport().WriteFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "batch-report.xlsx"),
		filepath.Join(dir, "batch-report.json"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
