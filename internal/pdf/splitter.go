package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

const maxFileTitleLength = 80

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SplitFile is one PDF written by the Splitter
type SplitFile struct {
	DocumentID int    `json:"document_id"`
	Path       string `json:"path"`
	FileName   string `json:"file_name"`
}

// Splitter writes the detected documents of a bundle as separate PDFs
type Splitter struct {
	conf *model.Configuration
}

// NewSplitter creates a splitter that reads bundles in relaxed mode
func NewSplitter() *Splitter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Splitter{conf: conf}
}

// Split writes one file per document into outDir, named
// "NNN_<category>_<title>.pdf". When categories are given only documents
// of those categories are written.
func (s *Splitter) Split(ctx context.Context, srcPath, outDir string, docs []casefile.Document, categories []casefile.Category) ([]SplitFile, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []SplitFile
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if len(categories) > 0 && !slices.Contains(categories, d.Category) {
			continue
		}

		name := SplitFileName(d)
		path := filepath.Join(outDir, name)
		pages := []string{fmt.Sprintf("%d-%d", d.StartPage, d.EndPage)}
		if err := api.TrimFile(srcPath, path, pages, s.conf); err != nil {
			return written, fmt.Errorf("failed to write document %d: %w", d.ID, err)
		}
		written = append(written, SplitFile{DocumentID: d.ID, Path: path, FileName: name})
	}
	return written, nil
}

// SplitFileName builds the file name of a split document
func SplitFileName(d casefile.Document) string {
	title := unsafeFileChars.ReplaceAllString(d.Title, "_")
	if r := []rune(title); len(r) > maxFileTitleLength {
		title = string(r[:maxFileTitleLength])
	}
	return fmt.Sprintf("%03d_%s_%s.pdf", d.ID, d.Category, title)
}
