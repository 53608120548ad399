package pdf

// FileInfo represents a bundle found in the inbox
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// SearchDirectoryRequest represents a request to list bundles in a directory
type SearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
}

// SearchDirectoryResult represents the bundles found in a directory
type SearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// ValidateFileResult represents the result of a bundle validation
type ValidateFileResult struct {
	Valid       bool   `json:"valid"`
	Path        string `json:"path"`
	Pages       int    `json:"pages"`
	TextPages   int    `json:"text_pages"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"` // "text", "scanned", "mixed", "no_content"
	Message     string `json:"message,omitempty"`
}

// Content types reported by the validator
const (
	ContentTypeText      = "text"
	ContentTypeScanned   = "scanned"
	ContentTypeMixed     = "mixed"
	ContentTypeNoContent = "no_content"
)
