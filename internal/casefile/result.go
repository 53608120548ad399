package casefile

import (
	"fmt"
	"path/filepath"
	"slices"
)

// NewFailedResult builds the result of an import that could not read the
// bundle at all: success is false, there is one error and no documents.
func NewFailedResult(importID, sourceFile string, err error) ImportResult {
	msg := "import failed"
	if err != nil {
		msg = fmt.Sprintf("failed to analyse %s: %v", filepath.Base(sourceFile), err)
	}
	return ImportResult{
		ImportID:     importID,
		SourceFile:   sourceFile,
		Success:      false,
		Documents:    []Document{},
		QualityLabel: QualityPoor,
		Errors:       []string{msg},
		Warnings:     []string{},
	}
}

// Clone returns a deep copy of the result
func (r ImportResult) Clone() ImportResult {
	out := r
	out.Documents = slices.Clone(r.Documents)
	out.Errors = slices.Clone(r.Errors)
	out.Warnings = slices.Clone(r.Warnings)
	if r.CoverSheet != nil {
		cs := *r.CoverSheet
		cs.Parties = slices.Clone(r.CoverSheet.Parties)
		out.CoverSheet = &cs
	}
	return out
}

// DocumentsIn returns the documents of the given categories, or all of them
// when no category is given.
func (r ImportResult) DocumentsIn(categories ...Category) []Document {
	if len(categories) == 0 {
		return slices.Clone(r.Documents)
	}
	var out []Document
	for _, d := range r.Documents {
		if slices.Contains(categories, d.Category) {
			out = append(out, d)
		}
	}
	return out
}
