package descriptions

import (
	"maps"
	"slices"
)

// Tool descriptions with practical examples and use cases

const (
	CasefileImportDescription = `Import one case-file bundle: split it into its embedded documents, read the cover sheet and score the result.

**When to use:** A client or court sent a scanned or exported PDF bundle that mixes cover sheet, pleadings, letters, contracts and invoices.

**What you get:** JSON with the cover sheet (case number, caption, court, amount in dispute, parties), one entry per detected document (title, category, type, page range, date, preview, confidence), a quality score 0-100 with label, OCR usage, errors and warnings.

**Examples:**
• "Import inbox/2024-03_mueller_gegen_acme.pdf and tell me which documents it contains"
• "Import scan_0001.pdf, split it and write the metadata file"

**Common workflows:**
1. Intake: casefile_search_directory → casefile_import → review warnings and low-confidence documents
2. Filing: casefile_import with split=true → file the per-document PDFs by category

**Best practices:** Check quality_label first. "critical" or "poor" results usually mean a scanned bundle without OCR or a missing cover sheet.`

	CasefileBatchImportDescription = `Import many bundles at once with bounded concurrency and a per-file timeout.

**When to use:** Clearing an inbox of bundles, or re-importing a list of files after a rule change.

**What you get:** A batch report with one import result per file in input order, a summary (files, failures, documents, average quality, OCR files) and the paths of the batch-report.xlsx and batch-report.json written to the output directory.

**Examples:**
• "Import every bundle in the inbox"
• "Re-import mueller.pdf and schmidt.pdf and write their metadata"

**Best practices:** A failing file never stops the batch. Look at the failed entries of the report and run casefile_validate on them.`

	CasefileSearchDirectoryDescription = `Find PDF bundles in the inbox or one of its subdirectories.

**When to use:** Before importing, to see what is waiting in the inbox or to find the bundle of a specific client.

**Examples:**
• "List all bundles in the inbox"
• "Find bundles mentioning mueller"

**Best practices:** Queries match whole words of the file name in any order, case-insensitively. Hidden directories are skipped.`

	CasefileValidateDescription = `Check that a file is a readable PDF within the size limit and report whether it has a text layer.

**When to use:** Before importing files of unknown origin, or to understand why an import failed.

**What you get:** Validity, page count, pages with a text layer and a content type of "text", "mixed", "scanned" or "no_content".

**Best practices:** "scanned" bundles need OCR; check casefile_server_info to see whether OCR is available.`

	CasefileServerInfoDescription = `Get server status, directories, OCR availability, the active classification rules and the bundles in the inbox.

**When to use:** At the start of a session or when imports behave unexpectedly.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"casefile_import":           CasefileImportDescription,
	"casefile_batch_import":     CasefileBatchImportDescription,
	"casefile_search_directory": CasefileSearchDirectoryDescription,
	"casefile_validate":         CasefileValidateDescription,
	"casefile_server_info":      CasefileServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools in sorted order
func GetAllToolNames() []string {
	return slices.Sorted(maps.Keys(ToolDescriptions))
}
