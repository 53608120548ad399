package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
)

// MetadataFileName is the name of the JSON file written next to split documents
const MetadataFileName = "casefile_metadata.json"

// OutputDirFor returns the per-bundle output directory below outDir, named
// after the bundle without its extension. A bundle inside root keeps its
// subdirectory, so a/akte.pdf and b/akte.pdf do not share a directory.
// Bundles outside root are keyed on the base name alone.
func OutputDirFor(outDir, root, source string) string {
	name := filepath.Base(source)
	if rel, ok := relativeTo(root, source); ok {
		name = rel
	}
	return filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name)))
}

func relativeTo(root, path string) (string, bool) {
	if root == "" {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// WriteMetadata writes the result as indented JSON into dir and returns the
// file path.
func WriteMetadata(dir string, result casefile.ImportResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	path := filepath.Join(dir, MetadataFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return path, nil
}

// SplitDocuments writes every document of a successful result as its own
// PDF into outDir. The returned copy of the result carries the file names;
// the input result is left untouched.
func SplitDocuments(ctx context.Context, splitter *pdf.Splitter, result casefile.ImportResult, srcPath, outDir string, categories []casefile.Category) (casefile.ImportResult, error) {
	out := result.Clone()
	if !result.Success {
		return out, fmt.Errorf("cannot split a failed import")
	}

	files, err := splitter.Split(ctx, srcPath, outDir, result.Documents, categories)
	if err != nil {
		return out, err
	}

	names := make(map[int]string, len(files))
	for _, f := range files {
		names[f.DocumentID] = f.FileName
	}
	for idx := range out.Documents {
		out.Documents[idx].FileName = names[out.Documents[idx].ID]
	}
	return out, nil
}
