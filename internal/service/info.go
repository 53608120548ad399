package service

import (
	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/descriptions"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
)

// maxListedBundles caps the inbox listing of ServerInfo
const maxListedBundles = 50

// ServerInfo describes the running server
type ServerInfo struct {
	ServerName        string         `json:"server_name"`
	Version           string         `json:"version"`
	InboxDirectory    string         `json:"inbox_directory"`
	OutputDirectory   string         `json:"output_directory"`
	MaxFileSize       int64          `json:"max_file_size"`
	OCRAvailable      bool           `json:"ocr_available"`
	RuleVersion       string         `json:"rule_version"`
	RuleCount         int            `json:"rule_count"`
	Categories        []string       `json:"categories"`
	AvailableTools    []ToolInfo     `json:"available_tools"`
	DirectoryContents []pdf.FileInfo `json:"directory_contents"`
	UsageGuidance     string         `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// ServerInfo collects server status and the bundles waiting in the inbox.
// A failing inbox scan leaves the listing empty.
func (s *Service) ServerInfo(serverName, version string) *ServerInfo {
	info := &ServerInfo{
		ServerName:        serverName,
		Version:           version,
		InboxDirectory:    s.paths.Root(),
		OutputDirectory:   s.outputDir,
		MaxFileSize:       s.maxFileSize,
		OCRAvailable:      s.ocrAvailable,
		RuleVersion:       s.classifier.GetVersion(),
		RuleCount:         len(s.classifier.Rules()),
		AvailableTools:    availableTools(),
		DirectoryContents: []pdf.FileInfo{},
		UsageGuidance:     usageGuidance(s.ocrAvailable),
	}
	for _, c := range casefile.Categories() {
		info.Categories = append(info.Categories, string(c))
	}

	found, err := s.search.SearchDirectory(pdf.SearchDirectoryRequest{
		Directory: s.paths.Root(),
		Limit:     maxListedBundles,
	})
	if err != nil {
		s.logger.Debug("Inbox scan failed", "directory", s.paths.Root(), "error", err)
		return info
	}
	info.DirectoryContents = found.Files
	return info
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "casefile_import",
			Description: descriptions.GetToolDescription("casefile_import"),
			Usage:       "Use this tool to split one bundle into its documents and read its cover sheet.",
			Parameters: "path (required): bundle path, relative to the inbox or absolute inside it, " +
				"split (optional): write one PDF per document, write_metadata (optional): write casefile_metadata.json, " +
				"categories (optional): only split documents of these categories",
		},
		{
			Name:        "casefile_batch_import",
			Description: descriptions.GetToolDescription("casefile_batch_import"),
			Usage:       "Use this tool to import several bundles at once and get an xlsx and json report.",
			Parameters: "directory (optional): directory inside the inbox (defaults to the inbox), " +
				"paths (optional): explicit bundle paths, write_metadata (optional): write metadata per bundle",
		},
		{
			Name:        "casefile_search_directory",
			Description: descriptions.GetToolDescription("casefile_search_directory"),
			Usage:       "Use this tool to find bundles in the inbox by file name.",
			Parameters: "directory (optional): directory inside the inbox, query (optional): words of the file name, " +
				"limit (optional): maximum number of results",
		},
		{
			Name:        "casefile_validate",
			Description: descriptions.GetToolDescription("casefile_validate"),
			Usage:       "Use this tool to check a bundle and its text layer before importing it.",
			Parameters:  "path (required): bundle path, relative to the inbox or absolute inside it",
		},
		{
			Name:        "casefile_server_info",
			Description: descriptions.GetToolDescription("casefile_server_info"),
			Usage:       "Use this tool to see directories, OCR availability, rules and waiting bundles.",
			Parameters:  "No parameters required",
		},
	}
}

func usageGuidance(ocr bool) string {
	text := `💡 Usage Guidance:
1. List waiting bundles with casefile_search_directory.
2. Import a bundle with casefile_import; set split=true to file each document separately.
3. Review documents with low confidence and every warning before filing.
4. Use casefile_batch_import to clear the whole inbox; failed files are listed in the report.
`
	if !ocr {
		text += "\n⚠️  OCR is not available. Scanned pages keep their (usually empty) text layer and " +
			"bundles without text will score poorly.\n"
	}
	return text
}
